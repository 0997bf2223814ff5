package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundtrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "EVENT#abc"},
		"SK": &types.AttributeValueMemberS{Value: "REGISTRATION#asha@example.com"},
	}

	cursor, err := lastEvalKeyToCursor(key)
	require.NoError(t, err)

	got, err := cursorToLastEval(cursor)
	require.NoError(t, err)

	pk, ok := got["PK"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "EVENT#abc", pk.Value)
	sk, ok := got["SK"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "REGISTRATION#asha@example.com", sk.Value)
}

func TestCursorToLastEvalRejectsGarbage(t *testing.T) {
	_, err := cursorToLastEval("not-base64!!")
	assert.Error(t, err)
}
