package export

import (
	"fmt"
	"io"

	"github.com/emersion/go-vcard"

	"github.com/rbaliyan/directory"
)

// VCard converts a name-resolution candidate into a version 4 vCard.
// Candidates with neither a mailbox nor a contact yield an empty card with
// only the version set.
func VCard(c directory.Candidate) vcard.Card {
	card := make(vcard.Card)
	mb := c.Mailbox()
	contact := c.Contact()

	name := ""
	if contact != nil {
		name = contact.DisplayName
	}
	if name == "" && mb != nil {
		name = mb.Name
	}
	if name != "" {
		card.SetValue(vcard.FieldFormattedName, name)
	}

	seen := make(map[string]bool)
	addEmail := func(addr string) {
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		card.AddValue(vcard.FieldEmail, addr)
	}
	if mb != nil {
		addEmail(mb.EmailAddress)
		if mb.MailboxType != "" {
			card.SetKind(kind(mb.MailboxType))
		}
	}

	if contact != nil {
		if contact.GivenName != "" || contact.Surname != "" {
			card.SetName(&vcard.Name{
				GivenName:  contact.GivenName,
				FamilyName: contact.Surname,
			})
		}
		if contact.CompanyName != "" || contact.Department != "" {
			org := contact.CompanyName
			if contact.Department != "" {
				org += ";" + contact.Department
			}
			card.SetValue(vcard.FieldOrganization, org)
		}
		if contact.JobTitle != "" {
			card.SetValue(vcard.FieldTitle, contact.JobTitle)
		}
		for _, e := range contact.EmailAddresses {
			addEmail(e)
		}
		for _, p := range contact.PhoneNumbers {
			card.AddValue(vcard.FieldTelephone, p)
		}
	}

	vcard.ToV4(card)
	return card
}

// WriteVCards encodes one vCard per candidate to w, in order.
func WriteVCards(w io.Writer, candidates []directory.Candidate) error {
	enc := vcard.NewEncoder(w)
	for i, c := range candidates {
		if err := enc.Encode(VCard(c)); err != nil {
			return fmt.Errorf("export: encode vcard %d: %w", i, err)
		}
	}
	return nil
}

// kind maps a directory mailbox type onto a vCard KIND value.
func kind(mailboxType string) vcard.Kind {
	switch mailboxType {
	case "PublicDL", "PrivateDL", "GroupMailbox":
		return vcard.KindGroup
	default:
		return vcard.KindIndividual
	}
}
