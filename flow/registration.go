package flow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jrsteele09/ideathon-portal/api"
	"github.com/jrsteele09/ideathon-portal/otp"
	"github.com/jrsteele09/ideathon-portal/users"
	"github.com/rs/zerolog/log"
)

type RegistrationStep int

const (
	RegLeaderDetails RegistrationStep = iota
	RegTeamDetails
	RegIdeaDetails
	RegSubmitted
)

func (s RegistrationStep) String() string {
	switch s {
	case RegLeaderDetails:
		return "leader"
	case RegTeamDetails:
		return "team"
	case RegIdeaDetails:
		return "idea"
	case RegSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Team sizes count the leader.
const (
	MinTeamSize = 2
	MaxTeamSize = 5
)

func TeamSizeOptions() []int {
	sizes := make([]int, 0, MaxTeamSize-MinTeamSize+1)
	for n := MinTeamSize; n <= MaxTeamSize; n++ {
		sizes = append(sizes, n)
	}
	return sizes
}

// Topics offered on the idea step.
var Topics = []string{
	"HealthTech",
	"EdTech",
	"FinTech",
	"Sustainability",
	"Smart Cities",
	"Open Innovation",
}

type Leader struct {
	Name      string
	Email     string
	Mobile    string
	Institute string
}

type Idea struct {
	Topic       string
	Description string
}

// RegistrationFlow walks LeaderDetails -> TeamDetails -> IdeaDetails -> Submitted. The leader
// step has an OTP sub state entered by Continue and left by a verified code; once the email
// is verified Continue skips it. Back goes one step towards the leader.
type RegistrationFlow struct {
	api  API
	opts Options

	step          RegistrationStep
	otpSent       bool
	emailVerified bool
	err           string

	leader   Leader
	teamName string
	members  []users.TeamMember
	idea     Idea

	entry    *otp.Entry
	cooldown *otp.Cooldown
}

func NewRegistrationFlow(backend API, opts Options) *RegistrationFlow {
	opts = opts.withDefaults()
	return &RegistrationFlow{
		api:      backend,
		opts:     opts,
		members:  make([]users.TeamMember, MinTeamSize-1),
		entry:    otp.NewEntry(opts.OTPLength),
		cooldown: opts.newCooldown(),
	}
}

func (f *RegistrationFlow) Step() RegistrationStep { return f.step }
func (f *RegistrationFlow) OTPSent() bool { return f.otpSent }
func (f *RegistrationFlow) EmailVerified() bool { return f.emailVerified }
func (f *RegistrationFlow) Error() string { return f.err }
func (f *RegistrationFlow) Leader() Leader { return f.leader }
func (f *RegistrationFlow) TeamName() string { return f.teamName }
func (f *RegistrationFlow) TeamSize() int { return len(f.members) + 1 }
func (f *RegistrationFlow) Idea() Idea { return f.idea }
func (f *RegistrationFlow) Entry() *otp.Entry { return f.entry }
func (f *RegistrationFlow) Cooldown() *otp.Cooldown { return f.cooldown }
func (f *RegistrationFlow) RedirectTo() string { return DashboardPath }

func (f *RegistrationFlow) RedirectDelay() time.Duration { return f.opts.SuccessDelay }

// Members returns a copy of the non-leader members.
func (f *RegistrationFlow) Members() []users.TeamMember {
	out := make([]users.TeamMember, len(f.members))
	copy(out, f.members)
	return out
}

// SetLeader updates the leader fields. The email goes through SetEmail.
func (f *RegistrationFlow) SetLeader(l Leader) {
	f.SetEmail(l.Email)
	f.leader.Name = strings.TrimSpace(l.Name)
	f.leader.Mobile = strings.TrimSpace(l.Mobile)
	f.leader.Institute = strings.TrimSpace(l.Institute)
}

// SetEmail changes the leader email. Any change drops a previous verification at once; a code
// already sent for the old address is abandoned too.
func (f *RegistrationFlow) SetEmail(email string) {
	email = strings.TrimSpace(email)
	if email == f.leader.Email {
		return
	}
	f.leader.Email = email
	f.emailVerified = false
	if f.otpSent {
		f.otpSent = false
		f.entry.Reset()
	}
}

// Continue leaves the leader step: straight to TeamDetails when the email is verified,
// otherwise it validates the leader and sends a code.
func (f *RegistrationFlow) Continue(ctx context.Context) {
	if f.step != RegLeaderDetails {
		return
	}
	if msg := f.validateLeader(); msg != "" {
		f.err = msg
		return
	}
	f.err = ""
	if f.emailVerified {
		f.step = RegTeamDetails
		return
	}
	if f.otpSent {
		return
	}
	if f.sendCode(ctx) {
		f.otpSent = true
	}
}

// Resend asks for a new code once the cooldown has run out.
func (f *RegistrationFlow) Resend(ctx context.Context) {
	if f.step != RegLeaderDetails || !f.otpSent || f.cooldown.Active() {
		return
	}
	f.sendCode(ctx)
}

func (f *RegistrationFlow) validateLeader() string {
	switch {
	case f.leader.Name == "":
		return MsgNameRequired
	case f.leader.Email == "":
		return MsgEmailRequired
	case !users.ValidEmail(f.leader.Email):
		return MsgEmailInvalid
	case f.leader.Mobile == "":
		return MsgMobileRequired
	}
	return ""
}

func (f *RegistrationFlow) sendCode(ctx context.Context) bool {
	res, err := f.api.SendOTP(ctx, f.leader.Email)
	if err != nil {
		log.Err(err).Str("email", f.leader.Email).Msg("send-otp failed")
		f.fail(MsgSomethingWrong)
		return false
	}

	switch r := res.(type) {
	case api.OTPSent:
		f.entry.Reset()
		f.cooldown.Start()
		return true
	case api.ServerError:
		f.fail(MsgServerError)
	case api.Rejected:
		f.fail(messageOr(r.Message, MsgSendFailed))
	case api.EmailNotRegistered:
		f.fail(MsgSendFailed)
	default:
		f.fail(MsgUnexpected)
	}
	return false
}

// VerifyOTP confirms the leader email with the registration endpoint. A verified code skips
// straight to TeamDetails; no session is created.
func (f *RegistrationFlow) VerifyOTP(ctx context.Context) {
	if f.step != RegLeaderDetails || !f.otpSent {
		return
	}
	if !f.entry.IsComplete() {
		f.entry.SetError(msgIncompleteCode(f.entry.Len()))
		return
	}

	res, err := f.api.VerifyOTP(ctx, f.leader.Email, f.entry.Code())
	if err != nil {
		log.Err(err).Str("email", f.leader.Email).Msg("verify-otp failed")
		f.entry.SetError(MsgSomethingWrong)
		return
	}

	switch r := res.(type) {
	case api.OTPVerified:
		f.emailVerified = true
		f.otpSent = false
		f.cooldown.Stop()
		f.err = ""
		f.step = RegTeamDetails
	case api.IncorrectCode:
		f.entry.Reset()
		f.entry.SetError(MsgIncorrectCode)
	case api.CodeExpired:
		f.entry.Reset()
		f.cooldown.Clear()
		f.entry.SetError(MsgCodeExpired)
	case api.ServerError:
		f.entry.SetError(MsgServerError)
	case api.Unrecognized:
		log.Warn().Str("result", r.Result).Msg("unrecognized verify-otp result")
		f.entry.SetError(MsgUnexpected)
	default:
		f.entry.SetError(MsgUnexpected)
	}
}

func (f *RegistrationFlow) SetTeamName(name string) {
	f.teamName = strings.TrimSpace(name)
}

// SetTeamSize resizes the member list to n-1 slots. Members still in range keep their data.
func (f *RegistrationFlow) SetTeamSize(n int) error {
	if n < MinTeamSize || n > MaxTeamSize {
		f.err = MsgTeamSizeInvalid
		return errInvalidTeamSize
	}
	want := n - 1
	switch {
	case want < len(f.members):
		f.members = f.members[:want]
	case want > len(f.members):
		f.members = append(f.members, make([]users.TeamMember, want-len(f.members))...)
	}
	return nil
}

var errInvalidTeamSize = errors.New("invalid team size")

// SetMember replaces member i (0 is the first member after the leader).
func (f *RegistrationFlow) SetMember(i int, m users.TeamMember) {
	if i < 0 || i >= len(f.members) {
		return
	}
	f.members[i] = users.TeamMember{
		Name:   strings.TrimSpace(m.Name),
		Email:  strings.TrimSpace(m.Email),
		Mobile: strings.TrimSpace(m.Mobile),
	}
}

// NextToIdea validates the team step and moves on.
func (f *RegistrationFlow) NextToIdea() {
	if f.step != RegTeamDetails {
		return
	}
	if f.teamName == "" {
		f.err = MsgTeamNameRequired
		return
	}
	for i, m := range f.members {
		if m.Name == "" || m.Mobile == "" || !users.ValidEmail(m.Email) {
			f.err = msgMemberIncomplete(i)
			return
		}
	}
	f.err = ""
	f.step = RegIdeaDetails
}

func (f *RegistrationFlow) SetIdea(idea Idea) {
	f.idea = Idea{
		Topic:       strings.TrimSpace(idea.Topic),
		Description: strings.TrimSpace(idea.Description),
	}
}

// Back moves one step towards the leader.
func (f *RegistrationFlow) Back() {
	switch f.step {
	case RegTeamDetails:
		f.step = RegLeaderDetails
	case RegIdeaDetails:
		f.step = RegTeamDetails
	default:
		return
	}
	f.err = ""
}

// Submit sends the registration. Without a verified email nothing is sent and the flow goes
// back to the leader step, whatever step it was on.
func (f *RegistrationFlow) Submit(ctx context.Context) {
	if !f.emailVerified {
		f.step = RegLeaderDetails
		f.err = MsgVerifyEmailFirst
		return
	}
	if f.step != RegIdeaDetails {
		return
	}
	switch {
	case f.idea.Topic == "":
		f.err = MsgTopicRequired
		return
	case f.idea.Description == "":
		f.err = MsgIdeaRequired
		return
	}

	err := f.api.Register(ctx, f.Registration())
	if err != nil {
		log.Err(err).Str("email", f.leader.Email).Msg("registration failed")
		var apiErr *api.Error
		switch {
		case errors.As(err, &apiErr):
			f.err = messageOr(apiErr.Detail, MsgRegisterFailed)
		case errors.Is(err, api.ErrTransport):
			f.err = MsgSomethingWrong
		default:
			f.err = MsgRegisterFailed
		}
		return
	}
	f.err = ""
	f.step = RegSubmitted
	f.cooldown.Stop()
}

// Registration is the payload Submit sends.
func (f *RegistrationFlow) Registration() api.Registration {
	return api.Registration{
		Name:            f.leader.Name,
		Email:           f.leader.Email,
		Mobile:          f.leader.Mobile,
		Institute:       f.leader.Institute,
		TeamName:        f.teamName,
		TeamMembers:     f.Members(),
		Topic:           f.idea.Topic,
		IdeaDescription: f.idea.Description,
	}
}

func (f *RegistrationFlow) Close() {
	f.cooldown.Stop()
}

func (f *RegistrationFlow) fail(msg string) {
	if f.otpSent {
		f.entry.SetError(msg)
		return
	}
	f.err = msg
}
