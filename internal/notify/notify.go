// Package notify implements the performer callback contract spec.md §6
// describes: change notifications from the core to a UI, with an
// in-process default and an OSC-relaying implementation grounded on the
// teacher's SuperCollider tick relay (internal/model.Model.oscClient).
package notify

import (
	"log"

	"github.com/hypebeast/go-osc/osc"

	"seqcore/internal/mutegroup"
	"seqcore/internal/pattern"
)

// ChangeKind classifies a change notification.
type ChangeKind int

const (
	Yes ChangeKind = iota
	No
	Recreate
	Removed
	Signal
)

// Performer is the callback interface the core notifies on change.
// on_sequence_change returning false means "do not recreate" — the
// caller's session has gone Stale and should not rebuild its view.
type Performer interface {
	OnSequenceChange(patternNo pattern.Number, kind ChangeKind) bool
	OnMutesChange(groupNo mutegroup.GroupNumber, kind ChangeKind)
}

// InProcess is the default Performer: direct in-process callback slots,
// nil-safe (an unset slot is simply not invoked).
type InProcess struct {
	OnSeq   func(pattern.Number, ChangeKind) bool
	OnMutes func(mutegroup.GroupNumber, ChangeKind)
}

func (p *InProcess) OnSequenceChange(patternNo pattern.Number, kind ChangeKind) bool {
	if p.OnSeq == nil {
		return true
	}
	return p.OnSeq(patternNo, kind)
}

func (p *InProcess) OnMutesChange(groupNo mutegroup.GroupNumber, kind ChangeKind) {
	if p.OnMutes != nil {
		p.OnMutes(groupNo, kind)
	}
}

// OSCRelay forwards notifications to an external process over OSC,
// mirroring main.go's localhost SuperCollider client: it never blocks the
// caller on a failed delivery, it only logs.
type OSCRelay struct {
	client *osc.Client
	inner  Performer // optional: also invoke an in-process performer
}

// NewOSCRelay creates an OSC client addressed to host:port; nothing is
// sent until a notification arrives. inner may be nil.
func NewOSCRelay(host string, port int, inner Performer) *OSCRelay {
	return &OSCRelay{client: osc.NewClient(host, port), inner: inner}
}

func (r *OSCRelay) OnSequenceChange(patternNo pattern.Number, kind ChangeKind) bool {
	msg := osc.NewMessage("/sequence_change")
	msg.Append(int32(patternNo))
	msg.Append(int32(kind))
	if err := r.client.Send(msg); err != nil {
		log.Printf("notify: OSC send failed: %v", err)
	}
	if r.inner != nil {
		return r.inner.OnSequenceChange(patternNo, kind)
	}
	return true
}

func (r *OSCRelay) OnMutesChange(groupNo mutegroup.GroupNumber, kind ChangeKind) {
	msg := osc.NewMessage("/mutes_change")
	msg.Append(int32(groupNo))
	msg.Append(int32(kind))
	if err := r.client.Send(msg); err != nil {
		log.Printf("notify: OSC send failed: %v", err)
	}
	if r.inner != nil {
		r.inner.OnMutesChange(groupNo, kind)
	}
}
