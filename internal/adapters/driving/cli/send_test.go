package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
)

func TestSendCmd_Bulk(t *testing.T) {
	h := setupCLITest(t)
	h.mail.results = []domain.SendResult{
		{Success: true, Recipient: "ann@example.com"},
		{Success: false, Recipient: "bob@example.com", Error: "mailbox unavailable"},
	}

	out, err := h.run(t, "send", "--owner", "owner-1", "--clients", "c1,c2",
		"--subject", "Hi {{client_name}}", "--body", "<p>Hello</p>")
	require.NoError(t, err)

	assert.Equal(t, "owner-1", h.mail.owner)
	assert.Equal(t, domain.SendRequest{
		RecipientIDs: []string{"c1", "c2"},
		Subject:      "Hi {{client_name}}",
		Body:         "<p>Hello</p>",
	}, h.mail.req)
	assert.Contains(t, out, "sent ann@example.com")
	assert.Contains(t, out, "failed bob@example.com mailbox unavailable")
	assert.Contains(t, out, "Sent 1, failed 1")
}

func TestSendCmd_Template(t *testing.T) {
	h := setupCLITest(t)
	h.mail.results = []domain.SendResult{{Success: true, Recipient: "ann@example.com"}}

	out, err := h.run(t, "send", "--owner", "owner-1", "--clients", "c1", "--template", "t1", "--json")
	require.NoError(t, err)

	assert.Equal(t, "t1", h.mail.templateID)
	assert.Equal(t, []string{"c1"}, h.mail.req.RecipientIDs)
	assert.Contains(t, out, `"results"`)
	assert.Contains(t, out, `"recipient": "ann@example.com"`)
}

func TestSendCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mailErr error
		want    string
	}{
		{
			name: "missing owner",
			args: []string{"send", "--clients", "c1", "--subject", "s", "--body", "b"},
			want: "--owner is required",
		},
		{
			name: "body and template together",
			args: []string{"send", "--owner", "o", "--clients", "c1", "--body", "b", "--template", "t"},
			want: "none of the others can be",
		},
		{
			name: "neither body nor template",
			args: []string{"send", "--owner", "o", "--clients", "c1", "--subject", "s"},
			want: "at least one of the flags",
		},
		{
			name:    "foreign recipient",
			args:    []string{"send", "--owner", "o", "--clients", "c1", "--subject", "s", "--body", "b"},
			mailErr: domain.ErrUnauthorizedRecipient,
			want:    "send failed: " + domain.ErrUnauthorizedRecipient.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setupCLITest(t)
			h.mail.err = tt.mailErr

			_, err := h.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			if tt.mailErr != nil {
				assert.True(t, errors.Is(err, tt.mailErr))
			}
		})
	}
}
