package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Logical channel names, namespaced by a RP_BRIDGE prefix so that
// multiple bridge instances sharing a filesystem don't collide on
// address files (spec.md section 5.2).
const (
	ClientQueue = "client_queue"
	AgentQueue  = "agent_queue"
)

// ChannelName resolves a logical queue name to the address-file stem
// actually used on disk, honoring the RP_BRIDGE environment override.
func ChannelName(logical string) string {
	if ns := os.Getenv("RP_BRIDGE"); ns != "" {
		return ns + "." + logical
	}
	return logical
}

const (
	putPrefix = "PUT "
	getPrefix = "GET "
)

func addressFilePath(dir, channel string) string {
	return filepath.Join(dir, channel+".url")
}

// writeAddressFile publishes the bound endpoints for Putters and
// Getters to discover, grounded on the source's <channel>.url
// convention (radical.utils.zmq.queue.Bridge._initialize_bridge).
func writeAddressFile(dir, channel, putAddr, getAddr string) error {
	content := fmt.Sprintf("%s%s\n%s%s\n", putPrefix, putAddr, getPrefix, getAddr)
	return os.WriteFile(addressFilePath(dir, channel), []byte(content), 0o644)
}

func removeAddressFile(dir, channel string) error {
	err := os.Remove(addressFilePath(dir, channel))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

var addrReadGroup singleflight.Group

type endpoints struct {
	put, get string
}

// readAddressFile parses a channel's address file, collapsing
// concurrent reads for the same channel via singleflight — the pattern
// the teacher uses for concurrent cache refreshes
// (internal/service/channel_summary.go), applied here to concurrent
// Putter/Getter bootstrap instead of HTTP handler fan-in.
func readAddressFile(dir, channel string) (endpoints, error) {
	key := filepath.Join(dir, channel)
	v, err, _ := addrReadGroup.Do(key, func() (any, error) {
		data, err := os.ReadFile(addressFilePath(dir, channel))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrAddressNotFound, addressFilePath(dir, channel))
			}
			return nil, err
		}
		return parseAddressFile(data)
	})
	if err != nil {
		return endpoints{}, err
	}
	return v.(endpoints), nil
}

func parseAddressFile(data []byte) (endpoints, error) {
	var ep endpoints
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, putPrefix):
			ep.put = strings.TrimPrefix(line, putPrefix)
		case strings.HasPrefix(line, getPrefix):
			ep.get = strings.TrimPrefix(line, getPrefix)
		}
	}
	if ep.put == "" || ep.get == "" {
		return endpoints{}, fmt.Errorf("bridge: malformed address file: %q", string(data))
	}
	return ep, nil
}
