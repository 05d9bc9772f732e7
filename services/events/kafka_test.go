package eventsvc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/courseware/core"
)

func TestEncodeEvents(t *testing.T) {
	evt := core.NewEvent(core.EventSubmissionCreated, "sub-1", map[string]interface{}{"assignmentId": "a-1"})

	msgs, err := encodeEvents([]core.Event{evt})
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, "sub-1", string(msg.Key))
	assert.Equal(t, evt.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, core.EventSubmissionCreated, string(msg.Headers[0].Value))

	var decoded core.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.Type, decoded.Type)
	assert.Equal(t, "a-1", decoded.Data["assignmentId"])
}

func TestEncodeEvents_Empty(t *testing.T) {
	msgs, err := encodeEvents(nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
