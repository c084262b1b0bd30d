// Package listener turns editor lifecycle and file events into log lines.
//
// The listener is observation-only glue: it never influences how the host
// handles an event, and a nil or failing sink never disturbs the caller.
package listener

import (
	"fmt"
	"time"

	"github.com/emberedit/firstlog/internal/reload"
)

// untitled is logged for views that have no file on disk yet.
const untitled = "Untitled"

// EventType identifies an editor event.
type EventType int

const (
	EventInit EventType = iota
	EventNew
	EventLoad
	EventPreSave
	EventPostSave
	EventClose
)

// String returns a human-readable name for the event type.
func (t EventType) String() string {
	switch t {
	case EventInit:
		return "init"
	case EventNew:
		return "new"
	case EventLoad:
		return "load"
	case EventPreSave:
		return "pre_save"
	case EventPostSave:
		return "post_save"
	case EventClose:
		return "close"
	default:
		return "unknown"
	}
}

// SystemInfo describes the running host for startup logging.
type SystemInfo struct {
	EditorVersion  string
	Platform       string
	Arch           string
	RuntimeVersion string
	ModuleCount    int
}

// Listener logs editor events as they arrive.
type Listener struct {
	sink  reload.Sink
	start time.Time
}

// New creates a listener writing to sink. A nil sink discards everything.
func New(sink reload.Sink) *Listener {
	if sink == nil {
		sink = reload.SinkFunc(func(string) {})
	}
	return &Listener{sink: sink, start: time.Now()}
}

// LogSystemInfo writes one line per SystemInfo field.
func (l *Listener) LogSystemInfo(info SystemInfo) {
	l.sink.Log(fmt.Sprintf("Editor version: %s", info.EditorVersion))
	l.sink.Log(fmt.Sprintf("Platform: %s", info.Platform))
	l.sink.Log(fmt.Sprintf("Architecture: %s", info.Arch))
	l.sink.Log(fmt.Sprintf("Runtime version: %s", info.RuntimeVersion))
	l.sink.Log(fmt.Sprintf("Loaded modules count: %d", info.ModuleCount))
}

// OnInit is called when the host finishes loading. viewCount is the number
// of views restored at startup.
func (l *Listener) OnInit(viewCount int) {
	elapsed := time.Since(l.start)
	l.sink.Log(fmt.Sprintf("Editor finished loading in %.3f seconds", elapsed.Seconds()))
	l.sink.Log(fmt.Sprintf("Initial views count: %d", viewCount))
}

// OnNew is called when a new file is created.
func (l *Listener) OnNew(file string) {
	l.sink.Log(fmt.Sprintf("New file created: %s", orUntitled(file)))
}

// OnLoad is called when a file is loaded.
func (l *Listener) OnLoad(file string) {
	l.sink.Log(fmt.Sprintf("File loaded: %s", file))
}

// OnPreSave is called before a file is saved.
func (l *Listener) OnPreSave(file string) {
	l.sink.Log(fmt.Sprintf("About to save: %s", file))
}

// OnPostSave is called after a file is saved.
func (l *Listener) OnPostSave(file string) {
	l.sink.Log(fmt.Sprintf("File saved: %s", file))
}

// OnClose is called when a file is closed.
func (l *Listener) OnClose(file string) {
	l.sink.Log(fmt.Sprintf("File closed: %s", orUntitled(file)))
}

// Handle dispatches a raw event by type. Unknown types are ignored.
// This is the entry point for hosts that deliver events dynamically,
// such as scripted plugins.
func (l *Listener) Handle(t EventType, file string) {
	switch t {
	case EventInit:
		l.OnInit(0)
	case EventNew:
		l.OnNew(file)
	case EventLoad:
		l.OnLoad(file)
	case EventPreSave:
		l.OnPreSave(file)
	case EventPostSave:
		l.OnPostSave(file)
	case EventClose:
		l.OnClose(file)
	}
}

// EventTypeFromName maps an event name to its type. The boolean reports
// whether the name is known.
func EventTypeFromName(name string) (EventType, bool) {
	switch name {
	case "init":
		return EventInit, true
	case "new":
		return EventNew, true
	case "load":
		return EventLoad, true
	case "pre_save":
		return EventPreSave, true
	case "post_save":
		return EventPostSave, true
	case "close":
		return EventClose, true
	default:
		return 0, false
	}
}

func orUntitled(file string) string {
	if file == "" {
		return untitled
	}
	return file
}
