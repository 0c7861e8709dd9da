package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testUUID1 = "2b7c1c39-6f0e-4f43-9a5e-0d1c3e6f7a11"
	testUUID2 = "8d0a4f7e-1b2c-4d3e-8f9a-0b1c2d3e4f55"
)

func TestSendRequest_Validate(t *testing.T) {
	tests := []struct {
		name   string
		req    SendRequest
		fields []string
	}{
		{
			name: "valid",
			req:  SendRequest{RecipientIDs: []string{testUUID1}, Subject: "Hi", Body: "Hello"},
		},
		{
			name:   "no recipients",
			req:    SendRequest{Subject: "Hi", Body: "Hello"},
			fields: []string{"clientIds"},
		},
		{
			name:   "non uuid recipient",
			req:    SendRequest{RecipientIDs: []string{"abc"}, Subject: "Hi", Body: "Hello"},
			fields: []string{"clientIds"},
		},
		{
			name:   "blank subject and body",
			req:    SendRequest{RecipientIDs: []string{testUUID1}, Subject: " ", Body: ""},
			fields: []string{"subject", "body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
		})
	}
}

func TestSendRequest_UniqueRecipientIDs(t *testing.T) {
	req := SendRequest{RecipientIDs: []string{testUUID2, testUUID1, testUUID2}}
	assert.Equal(t, []string{testUUID2, testUUID1}, req.UniqueRecipientIDs())
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID(testUUID1))
	assert.True(t, IsUUID("2B7C1C39-6F0E-4F43-9A5E-0D1C3E6F7A11"))
	assert.False(t, IsUUID("2b7c1c39"))
	assert.False(t, IsUUID(""))
}

func TestMergeFields_Render(t *testing.T) {
	date := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	fields := NewMergeFields(Recipient{Name: "Ann", Email: "a@x.com"}, date, "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"name", "Hi {{client_name}}", "Hi Ann"},
		{"repeated", "{{client_name}} {{client_name}}", "Ann Ann"},
		{"email", "to {{email}}", "to a@x.com"},
		{"date default layout", "on {{date}}", "on 3/7/2026"},
		{"unknown token kept", "Hi {{first_name}}", "Hi {{first_name}}"},
		{"no tokens", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fields.Render(tt.in))
		})
	}
}

func TestNewMergeFields_CustomLayout(t *testing.T) {
	date := time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC)
	fields := NewMergeFields(Recipient{Name: "Ann"}, date, "2006-01-02")
	assert.Equal(t, "2026-03-07", fields.Date)
}
