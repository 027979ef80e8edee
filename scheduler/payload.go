package scheduler

import (
	"github.com/ethereum/go-ethereum/log"
	"mantlenetworkio/scheduler/collaborators"
)

// bindPayload normalizes a raw call into a Bounded Payload (spec §4.1):
// Inline when it fits within inlineMax, otherwise a content-addressed
// Lookup, with a request() issued against the registry so the bytes are
// retained until the scheduler later unrequests them.
func bindPayload(registry collaborators.PayloadRegistry, callBytes []byte, inlineMax uint32) Payload {
	if uint32(len(callBytes)) <= inlineMax {
		return Payload{Kind: PayloadInline, Inline: append([]byte(nil), callBytes...)}
	}
	hash, length := registry.Store(callBytes)
	registry.Request(hash)
	log.Debug("payload bound as lookup", "hash", hash, "len", length)
	return Payload{Kind: PayloadLookup, Hash: hash, Len: length}
}

// dropPayload releases a Lookup payload's registry hold. It is a no-op for
// Inline payloads, which carry no external reference.
func dropPayload(registry collaborators.PayloadRegistry, p *Payload) {
	if p == nil || p.Kind != PayloadLookup {
		return
	}
	registry.Unrequest(p.Hash)
	log.Trace("payload unrequested on retire", "hash", p.Hash)
}

// resolvePayload turns a Bounded Payload into raw call bytes, or reports
// that the referenced bytes are not retrievable (spec §4.5 step 1). A
// Lookup whose stored length diverges from what the registry now holds is
// treated the same as a miss (spec SPEC_FULL §3).
func resolvePayload(registry collaborators.PayloadRegistry, p *Payload) ([]byte, bool) {
	if p.Kind == PayloadInline {
		return p.Inline, true
	}
	data, ok := registry.Fetch(p.Hash)
	if !ok {
		return nil, false
	}
	if uint32(len(data)) != p.Len {
		log.Warn("payload length mismatch, treating as unavailable", "hash", p.Hash, "stored", p.Len, "actual", len(data))
		return nil, false
	}
	return data, true
}
