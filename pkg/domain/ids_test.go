package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "rosterid/pkg/domain-errors"
)

// TestParseIdentityID_Invariants validates the parsing rule:
// IDs must be valid, non-empty, non-nil UUIDs.
func TestParseIdentityID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseIdentityID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseIdentityID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseIdentityID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseIdentityID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, IdentityID(validUUID), id)
		assert.False(t, id.IsNil())
	})
}

func TestParseID_MalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE identities;--", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Whitespace only", "   ", true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMappingID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errIdentity := ParseIdentityID(validUUID)
		_, errMapping := ParseMappingID(validUUID)
		_, errCandidate := ParseCandidateID(validUUID)
		_, errAudit := ParseAuditID(validUUID)

		require.NoError(t, errIdentity)
		require.NoError(t, errMapping)
		require.NoError(t, errCandidate)
		require.NoError(t, errAudit)
	})

	for _, input := range []string{"", "invalid", uuid.Nil.String()} {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errIdentity := ParseIdentityID(input)
			_, errMapping := ParseMappingID(input)
			_, errCandidate := ParseCandidateID(input)
			_, errAudit := ParseAuditID(input)

			require.Error(t, errIdentity)
			require.Error(t, errMapping)
			require.Error(t, errCandidate)
			require.Error(t, errAudit)
		})
	}
}

func TestCandidateIDFor(t *testing.T) {
	a := CandidateIDFor("player|12|2021~player|40|2022")
	b := CandidateIDFor("player|12|2021~player|40|2022")
	c := CandidateIDFor("player|12|2021~player|41|2022")

	assert.Equal(t, a, b, "same pair key yields the same candidate")
	assert.NotEqual(t, a, c)
	assert.False(t, a.IsNil())
}

func TestParseEntityKind(t *testing.T) {
	k, err := ParseEntityKind("team")
	require.NoError(t, err)
	assert.Equal(t, KindTeam, k)

	_, err = ParseEntityKind("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseEntityKind("coach")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestIDJSONRoundTrip(t *testing.T) {
	type payload struct {
		Identity IdentityID `json:"identity"`
		Audit    *AuditID   `json:"audit,omitempty"`
	}
	original := NewIdentityID()
	auditID := NewAuditID()

	b, err := json.Marshal(payload{Identity: original, Audit: &auditID})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"identity":"`+original.String()+`"`)

	var decoded payload
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, original, decoded.Identity)
	require.NotNil(t, decoded.Audit)
	assert.Equal(t, auditID, *decoded.Audit)
}
