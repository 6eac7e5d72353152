package serializer

import "github.com/ValentinKolb/dictd/lib/dict"

// IResultSerializer turns a lookup result into the bytes written to the client
type IResultSerializer interface {
	// Serialize encodes a result. A result that was not found is encoded as the NOENTRY marker.
	// It returns the payload and an error if the result could not be encoded.
	Serialize(res dict.Result) ([]byte, error)
	// Name returns the name of the format (e.g. "text")
	Name() string
}
