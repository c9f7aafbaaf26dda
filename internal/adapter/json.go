package adapter

import (
	"encoding/json"
)

// JSON is the codec seam for NATS payloads, mockable so bridge tests can
// inject decode failures.
//
//go:generate mockgen -source=json.go -destination=../mocks/json.go -package=mocks -mock_names=JSON=MockJSON
type JSON interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type realJSON struct{}

// NewJSON returns the encoding/json backed codec.
func NewJSON() JSON {
	return &realJSON{}
}

func (j *realJSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (j *realJSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
