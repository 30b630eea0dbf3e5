package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"strconv"

	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/pkg/errors"
)

// Registration is the completed team registration submitted to reg.
type Registration struct {
	Name            string
	Email           string
	Mobile          string
	Institute       string
	TeamName        string
	TeamMembers     []users.TeamMember
	Topic           string
	IdeaDescription string
}

// multipart encodes r as the form the backend expects. teamMembers travels as a JSON string.
func (r Registration) multipart() (*bytes.Buffer, string, error) {
	members := r.TeamMembers
	if members == nil {
		members = []users.TeamMember{}
	}
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return nil, "", errors.Wrap(err, "[Registration multipart] encode team members")
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	fields := []struct{ name, value string }{
		{"name", r.Name},
		{"email", r.Email},
		{"mobile", r.Mobile},
		{"institute", r.Institute},
		{"teamName", r.TeamName},
		{"teamMemberCount", strconv.Itoa(len(members))},
		{"teamMembers", string(membersJSON)},
		{"topic", r.Topic},
		{"ideaDescription", r.IdeaDescription},
	}
	for _, f := range fields {
		if err := form.WriteField(f.name, f.value); err != nil {
			return nil, "", errors.Wrapf(err, "[Registration multipart] write %s", f.name)
		}
	}
	if err := form.Close(); err != nil {
		return nil, "", errors.Wrap(err, "[Registration multipart] close form")
	}
	return body, form.FormDataContentType(), nil
}
