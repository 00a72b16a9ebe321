// Package watchersdk lets external programs feed foreground-application
// events to kafeel. A watcher binary implements Watcher and calls Serve from
// its main function; kafeel launches it with go-plugin and polls it.
//
// Example:
//
//	func main() {
//		watchersdk.Serve(&myWatcher{})
//	}
package watchersdk

import (
	"net/rpc"
	"time"

	"github.com/hashicorp/go-plugin"
)

// PluginName is the key under which the watcher is dispensed.
const PluginName = "watcher"

// Handshake is shared by kafeel and watcher binaries. It is not a security
// measure; it prevents users from executing a plugin directly.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "KAFEEL_WATCHER_PLUGIN",
	MagicCookieValue: "e3f1c4a2-kafeel-watcher",
}

// EventType is the kind of a watcher event.
type EventType string

const (
	EventForeground EventType = "foreground"
	EventLock       EventType = "lock"
	EventUnlock     EventType = "unlock"
)

// Event is one observation. It is also the line format of `kafeel track
// --stdin`.
type Event struct {
	Type        EventType `json:"type"`
	AppID       string    `json:"app_id,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	WindowTitle string    `json:"window_title,omitempty"`
	At          time.Time `json:"at"`
}

// Watcher is implemented by plugin binaries.
type Watcher interface {
	// Poll blocks until events are available or timeout elapses and returns
	// the events in the order they occurred.
	Poll(timeout time.Duration) ([]Event, error)

	// Current returns the currently focused application as a foreground
	// event. An empty AppID means it is unknown.
	Current() (Event, error)
}

// Plugin is the go-plugin binding for Watcher over net/rpc.
type Plugin struct {
	Impl Watcher
}

// Server returns the RPC server side of the plugin.
func (p *Plugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

// Client returns the RPC client side of the plugin.
func (p *Plugin) Client(_ *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &RPCClient{client: c}, nil
}

// PluginMap returns the plugin set served by watcher binaries.
func PluginMap(impl Watcher) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginName: &Plugin{Impl: impl},
	}
}

// Serve starts the plugin server. It must be called from main and does not
// return.
func Serve(impl Watcher) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins:         PluginMap(impl),
	})
}

// RPCClient is the host-side Watcher.
type RPCClient struct {
	client *rpc.Client
}

func (c *RPCClient) Poll(timeout time.Duration) ([]Event, error) {
	var resp []Event
	if err := c.client.Call("Plugin.Poll", timeout, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *RPCClient) Current() (Event, error) {
	var resp Event
	err := c.client.Call("Plugin.Current", new(interface{}), &resp)
	return resp, err
}

// RPCServer exposes a Watcher over net/rpc.
type RPCServer struct {
	Impl Watcher
}

func (s *RPCServer) Poll(timeout time.Duration, resp *[]Event) error {
	events, err := s.Impl.Poll(timeout)
	if err != nil {
		return err
	}
	*resp = events
	return nil
}

func (s *RPCServer) Current(_ interface{}, resp *Event) error {
	event, err := s.Impl.Current()
	if err != nil {
		return err
	}
	*resp = event
	return nil
}
