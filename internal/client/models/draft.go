package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/akashi/internal/common"
)

// Draft is a certificate that has not been stored or minted yet.
type Draft struct {
	FileName    string
	Data        []byte
	Title       string
	Description string
	Recipient   string
}

// TitleFromFileName strips directories and the extension from name.
func TitleFromFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Normalize trims the text fields and fills an empty title from the file
// name.
func (d *Draft) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Recipient = strings.TrimSpace(d.Recipient)
	if d.Title == "" {
		d.Title = TitleFromFileName(d.FileName)
	}
}

// Validate normalizes d and reports missing fields as ErrInvalidDraft.
func (d *Draft) Validate() error {
	d.Normalize()

	var missing []string
	if len(d.Data) == 0 {
		missing = append(missing, "file")
	}
	if d.Title == "" {
		missing = append(missing, "title")
	}
	if d.Description == "" {
		missing = append(missing, "description")
	}
	if d.Recipient == "" {
		missing = append(missing, "recipient")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrInvalidDraft, strings.Join(missing, ", "))
	}
	return nil
}

// MintRequest carries the arguments of one mint_certificate call.
type MintRequest struct {
	Title          string
	Description    string
	ContentAddress string
	Recipient      string
}

// Validate trims r and reports missing fields as ErrInvalidDraft. The
// required set is the same as for a Draft, with the content address in
// place of the file.
func (r *MintRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.ContentAddress = strings.TrimSpace(r.ContentAddress)
	r.Recipient = strings.TrimSpace(r.Recipient)

	var missing []string
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.Description == "" {
		missing = append(missing, "description")
	}
	if r.ContentAddress == "" {
		missing = append(missing, "content address")
	}
	if r.Recipient == "" {
		missing = append(missing, "recipient")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", common.ErrInvalidDraft, strings.Join(missing, ", "))
	}
	return nil
}
