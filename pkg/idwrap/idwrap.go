// Package idwrap generates the identifiers used throughout a project.
//
// Entity ids are a short kind prefix followed by a ULID, e.g. "ctx-01HV...".
// ULIDs sort by creation time, so ordering a collection by id keeps creation
// order, which is what the model relies on for its canonical form.
package idwrap

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Kind is the prefix of an entity id.
type Kind string

const (
	KindProject               Kind = "proj"
	KindContext               Kind = "ctx"
	KindRelationship          Kind = "rel"
	KindGroup                 Kind = "grp"
	KindActor                 Kind = "actor"
	KindUserNeed              Kind = "need"
	KindActorConnection       Kind = "actor-conn"
	KindActorNeedConnection   Kind = "actor-need-conn"
	KindNeedContextConnection Kind = "need-ctx-conn"
	KindKeyframe              Kind = "kf"
)

// NewNow returns a fresh id for kind.
func NewNow(kind Kind) string {
	return New(kind, ulid.Make())
}

// New formats id for kind.
func New(kind Kind, id ulid.ULID) string {
	return string(kind) + "-" + id.String()
}

// Parse splits an id generated by New into its kind and ULID.
// Ids that were not generated here (imported or hand written) return ok=false.
func Parse(id string) (Kind, ulid.ULID, bool) {
	i := strings.LastIndexByte(id, '-')
	if i <= 0 || i == len(id)-1 {
		return "", ulid.ULID{}, false
	}
	u, err := ulid.Parse(id[i+1:])
	if err != nil {
		return "", ulid.ULID{}, false
	}
	return Kind(id[:i]), u, true
}

// Time returns the creation time encoded in id, or the zero time.
func Time(id string) time.Time {
	_, u, ok := Parse(id)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(int64(u.Time()))
}

// NewOrigin returns a unique marker identifying one editing session.
// Transactions tagged with it are recognised as local by that session only.
func NewOrigin() string {
	return "session-" + uuid.NewString()
}

// NewClientID returns a random replica id for a shared document.
func NewClientID() uint64 {
	u := uuid.New()
	var id uint64
	for _, b := range u[:8] {
		id = id<<8 | uint64(b)
	}
	return id
}
