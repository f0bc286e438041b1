package docsign

import (
	"github.com/petaldocs/petal"
	"github.com/petaldocs/petal/errors"
)

const (
	pathInitMsg                = "docsign/init"
	pathIssueMsg               = "docsign/issue"
	pathSubmitSignatureMsg     = "docsign/submit_signature"
	pathUpdateConfigurationMsg = "docsign/update_configuration"
)

var _ petal.Msg = (*InitMsg)(nil)
var _ petal.Msg = (*IssueMsg)(nil)
var _ petal.Msg = (*SubmitSignatureMsg)(nil)
var _ petal.Msg = (*UpdateConfigurationMsg)(nil)

// Path fulfills petal.Msg interface to allow routing
func (InitMsg) Path() string {
	return pathInitMsg
}

// Path fulfills petal.Msg interface to allow routing
func (IssueMsg) Path() string {
	return pathIssueMsg
}

// Path fulfills petal.Msg interface to allow routing
func (SubmitSignatureMsg) Path() string {
	return pathSubmitSignatureMsg
}

// Path fulfills petal.Msg interface to allow routing
func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *InitMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Admin", m.Admin.Validate())
	return errs
}

// Validate checks the signer roster first, so an empty roster is always
// reported as ErrEmptySignerRoster.
func (m *IssueMsg) Validate() error {
	if len(m.Signers) == 0 {
		return errors.Field("Signers", ErrEmptySignerRoster, "at least one signer required")
	}
	var errs error
	seen := make(map[string]struct{}, len(m.Signers))
	for _, s := range m.Signers {
		if err := s.Validate(); err != nil {
			errs = errors.AppendField(errs, "Signers", err)
			continue
		}
		if _, ok := seen[s.String()]; ok {
			errs = errors.Append(errs, errors.Field("Signers", errors.ErrDuplicate, "signer %s", s))
		}
		seen[s.String()] = struct{}{}
	}
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	errs = errors.AppendField(errs, "ContentHash", validateHash(m.ContentHash))
	errs = errors.AppendField(errs, "Deadline", m.Deadline.Validate())
	return errs
}

// Validate checks only the shape of the message. Everything that depends
// on the state, including the hash and both deadlines, is checked by the
// workflow in a fixed order.
func (m *SubmitSignatureMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Payload == nil {
		return errors.Append(errs, errors.Field("Payload", errors.ErrEmpty, "payload required"))
	}
	errs = errors.AppendField(errs, "Payload.Signer", m.Payload.Signer.Validate())
	if !m.Payload.Status.IsDecision() {
		errs = errors.Append(errs, errors.Field("Payload.Status", errors.ErrInput, "status %s cannot be submitted", m.Payload.Status))
	}
	return errs
}

func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		return errors.Append(errs, errors.Field("Patch", errors.ErrEmpty, "patch required"))
	}
	errs = errors.AppendField(errs, "Patch", m.Patch.Validate())
	return errs
}
