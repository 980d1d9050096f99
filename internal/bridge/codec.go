package bridge

import "github.com/vmihailenco/msgpack/v5"

// marshal/unmarshal wrap the wire codec so the rest of the package
// depends on neither msgpack's API shape nor any one payload type.
// Putters may send any msgpack-encodable value; Getters always receive
// a []any bulk.

func marshalItem(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func unmarshalItem(data []byte) (any, error) {
	var v any
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func marshalBulk(items []any) ([]byte, error) {
	return msgpack.Marshal(items)
}

func unmarshalBulk(data []byte) ([]any, error) {
	var items []any
	if err := msgpack.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
