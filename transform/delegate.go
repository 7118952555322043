package transform

import (
	"context"
	"fmt"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/model"
)

// DelegateParams is the musical context sent along with delegated requests
type DelegateParams struct {
	Key       string `json:"key"`
	ScaleType string `json:"scale_type"`
}

// Delegate hands a transform to an external service. It receives the viewport
// notes and returns the full replacement list for them.
type Delegate interface {
	Transform(ctx context.Context, name string, notes []model.WireNote, p DelegateParams) ([]model.WireNote, error)
}

// ApplyDelegated sends the viewport notes to d and splices whatever comes back
// in place of them. Returned notes carry no ids; the store assigns them. On
// failure the input is returned unchanged with the error.
func ApplyDelegated(ctx context.Context, notes []model.Note, vp geometry.Viewport, d Delegate, name string, p DelegateParams) ([]model.Note, error) {
	in := InViewport(notes, vp)
	if len(in) == 0 {
		return model.CloneNotes(notes), ErrEmptyViewport
	}

	wire, err := d.Transform(ctx, name, model.ToWire(in), p)
	if err != nil {
		debug.Warn("transform", "delegated %s failed: %v", name, err)
		return model.CloneNotes(notes), fmt.Errorf("delegated %s: %w", name, err)
	}

	debug.Log("transform", "delegated %s: %d notes sent, %d received", name, len(in), len(wire))
	return SpliceReply(notes, in, wire), nil
}

// SpliceReply drops every note of sent that is still in notes and appends the
// reply in its place. Notes that were not sent are kept whatever the viewport
// shows now, so a reply arriving late never touches them.
func SpliceReply(notes, sent []model.Note, reply []model.WireNote) []model.Note {
	return Splice(notes, sent, model.FromWire(reply))
}
