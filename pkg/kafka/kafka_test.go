package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	CordUID     string `json:"cord_uid"`
	TotalErrors int    `json:"total_errors"`
}

func TestEncodeKeepsKeysAndOrder(t *testing.T) {
	msgs, err := encode([]Message{
		{Key: "a", Value: event{CordUID: "a", TotalErrors: 2}},
		{Key: "b", Value: event{CordUID: "b"}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", string(msgs[0].Key))
	assert.JSONEq(t, `{"cord_uid":"a","total_errors":2}`, string(msgs[0].Value))

	got, err := Decode[event](msgs[1].Value)
	require.NoError(t, err)
	assert.Equal(t, event{CordUID: "b"}, got)
}

func TestEncodeRejectsUnencodableValue(t *testing.T) {
	_, err := encode([]Message{{Key: "bad", Value: make(chan int)}})
	assert.ErrorContains(t, err, "encoding message bad")
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode[event]([]byte("{"))
	assert.Error(t, err)
}
