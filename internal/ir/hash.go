package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the algorithm to change without collisions.
const (
	DomainRecord  = "symm/record/v1"
	DomainContent = "symm/content/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separates domain from data.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordID computes the identity of an extracted record. Two records with
// the same structure and text share an ID regardless of where the impl sits
// in its file.
func RecordID(rec *ImplRecord) (string, error) {
	c := Clone(rec)
	clearSpans(c)
	canonical, err := MarshalCanonical(map[string]any{
		"record":  c,
		"version": RecordVersion,
	})
	if err != nil {
		return "", fmt.Errorf("RecordID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

// ContentKey computes the cache key of one file expansion. Everything that
// can change the output is part of the key. The content enters as a digest of
// its exact bytes, so inputs differing only in Unicode normalization do not
// share a key.
func ContentKey(path string, content []byte, attributes []string) (string, error) {
	if attributes == nil {
		attributes = []string{}
	}
	digest := sha256.Sum256(content)
	canonical, err := MarshalCanonical(map[string]any{
		"path":       path,
		"content":    hex.EncodeToString(digest[:]),
		"attributes": attributes,
		"record":     RecordVersion,
	})
	if err != nil {
		return "", fmt.Errorf("ContentKey: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainContent, canonical), nil
}

// MustRecordID is like RecordID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustRecordID(rec *ImplRecord) string {
	id, err := RecordID(rec)
	if err != nil {
		panic(err)
	}
	return id
}

func clearSpans(rec *ImplRecord) {
	rec.Span = Span{}
	rec.NegativePos = Span{}
	rec.SelfType.Span = Span{}
	if rec.SelfType.Ref != nil {
		rec.SelfType.Ref.Elem.Span = Span{}
	}
	if rec.Trait != nil {
		rec.Trait.Span, rec.Trait.PathSpan, rec.Trait.ArgsSpan = Span{}, Span{}, Span{}
		for i := range rec.Trait.Args {
			rec.Trait.Args[i].Span = Span{}
		}
	}
	for _, m := range rec.Members {
		switch m := m.(type) {
		case *Method:
			m.Span, m.ParamsSpan = Span{}, Span{}
			for _, p := range m.Params {
				switch p := p.(type) {
				case *Receiver:
					p.Span = Span{}
				case *Typed:
					p.Span, p.Pattern.Span, p.Type.Span = Span{}, Span{}, Span{}
					if p.Type.Ref != nil {
						p.Type.Ref.Elem.Span = Span{}
					}
				case *Variadic:
					p.Span = Span{}
				}
			}
		case *OutputType:
			m.Span, m.Type.Span = Span{}, Span{}
		case *Verbatim:
			m.Span = Span{}
		}
	}
}
