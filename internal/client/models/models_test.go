package models

import (
	"testing"

	"github.com/dmitrijs2005/akashi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleFromFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"diploma.pdf", "diploma"},
		{"/home/me/certs/award.final.png", "award.final"},
		{"noext", "noext"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TitleFromFileName(tt.in), tt.in)
	}
}

func TestDraft_Validate(t *testing.T) {
	t.Run("fills title from file name", func(t *testing.T) {
		d := Draft{FileName: "x/diploma.pdf", Data: []byte("pdf"), Description: " Course ", Recipient: "0xB"}
		require.NoError(t, d.Validate())
		assert.Equal(t, "diploma", d.Title)
		assert.Equal(t, "Course", d.Description)
	})

	t.Run("explicit title kept", func(t *testing.T) {
		d := Draft{FileName: "a.pdf", Data: []byte("pdf"), Title: "Award", Description: "d", Recipient: "0xB"}
		require.NoError(t, d.Validate())
		assert.Equal(t, "Award", d.Title)
	})

	t.Run("missing fields", func(t *testing.T) {
		d := Draft{}
		err := d.Validate()
		require.ErrorIs(t, err, common.ErrInvalidDraft)
		for _, f := range []string{"file", "title", "description", "recipient"} {
			assert.Contains(t, err.Error(), f)
		}
	})

	t.Run("blank recipient", func(t *testing.T) {
		d := Draft{FileName: "a.pdf", Data: []byte("x"), Description: "d", Recipient: "   "}
		err := d.Validate()
		require.ErrorIs(t, err, common.ErrInvalidDraft)
		assert.Contains(t, err.Error(), "recipient")
	})
}

func TestMintRequest_Validate(t *testing.T) {
	r := MintRequest{Title: " Award ", Description: "d", ContentAddress: "https://agg/v1/blobs/x", Recipient: "0xB"}
	require.NoError(t, r.Validate())
	assert.Equal(t, "Award", r.Title)

	r = MintRequest{Title: "Award", ContentAddress: "https://agg/v1/blobs/x", Recipient: "0xB"}
	err := r.Validate()
	require.ErrorIs(t, err, common.ErrInvalidDraft)
	assert.Contains(t, err.Error(), "description")

	err = (&MintRequest{}).Validate()
	require.ErrorIs(t, err, common.ErrInvalidDraft)
	for _, f := range []string{"title", "description", "content address", "recipient"} {
		assert.Contains(t, err.Error(), f)
	}
}

func TestCertificateView_Actionable(t *testing.T) {
	tests := []struct {
		name       string
		canApprove bool
		approved   bool
		want       bool
	}{
		{"pending", true, false, true},
		{"already approved", true, true, false},
		{"not allowed", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := CertificateView{Certificate: Certificate{Approved: tt.approved}, CanApprove: tt.canApprove}
			assert.Equal(t, tt.want, v.Actionable())
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("approver")
	require.NoError(t, err)
	assert.Equal(t, ModeApprover, m)

	_, err = ParseMode("owner")
	assert.Error(t, err)
}
