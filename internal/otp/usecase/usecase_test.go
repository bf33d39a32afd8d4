package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shandysiswandi/shopauth/internal/otp/entity"
	"github.com/shandysiswandi/shopauth/internal/pkg/clock"
	"github.com/shandysiswandi/shopauth/internal/pkg/goerror"
	"github.com/shandysiswandi/shopauth/internal/pkg/hash"
	"github.com/shandysiswandi/shopauth/internal/pkg/instrument"
	"github.com/shandysiswandi/shopauth/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockStore struct{ mock.Mock }

func (m *mockStore) SaveRecord(ctx context.Context, rec entity.Record, ttl time.Duration) error {
	return m.Called(ctx, rec, ttl).Error(0)
}
func (m *mockStore) GetRecord(ctx context.Context, p entity.Purpose, email string) (*entity.Record, error) {
	args := m.Called(ctx, p, email)
	if r, _ := args.Get(0).(*entity.Record); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockStore) ConsumeRecord(ctx context.Context, rec entity.Record) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

type mockMail struct{ mock.Mock }

func (m *mockMail) SendCode(ctx context.Context, p entity.Purpose, email, code string, ttl time.Duration) error {
	return m.Called(ctx, p, email, code, ttl).Error(0)
}

type mockDirectory struct{ mock.Mock }

func (m *mockDirectory) UserExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

type mockToken struct{ mock.Mock }

func (m *mockToken) Generate(email string) (string, error) {
	args := m.Called(email)
	return args.String(0), args.Error(1)
}

type fixedCode string

func (c fixedCode) Generate() (string, error) { return string(c), nil }

type failingCode struct{}

func (failingCode) Generate() (string, error) { return "", errors.New("entropy exhausted") }

// --- helpers ---

var now = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	store  *mockStore
	mail   *mockMail
	dir    *mockDirectory
	token  *mockToken
	sealer *hash.Salted
	dep    Dependency
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := &fixture{
		store:  new(mockStore),
		mail:   new(mockMail),
		dir:    new(mockDirectory),
		token:  new(mockToken),
		sealer: hash.NewSalted(hash.NewHMACSHA256("unit-test-secret")),
	}
	f.dep = Dependency{
		RepoStore:     f.store,
		RepoMail:      f.mail,
		RepoDirectory: f.dir,
		Sealer:        f.sealer,
		Code:          fixedCode("123456"),
		Token:         f.token,
		Validator:     v,
		Clock:         clock.NewManual(now),
		Instrument:    instrument.NewNoop(),
	}
	return f
}

func (f *fixture) sealed(t *testing.T, code string) string {
	t.Helper()
	s, err := f.sealer.Seal(code)
	require.NoError(t, err)
	return s
}

func (f *fixture) assertAll(t *testing.T) {
	f.store.AssertExpectations(t)
	f.mail.AssertExpectations(t)
	f.dir.AssertExpectations(t)
	f.token.AssertExpectations(t)
}

func assertCode(t *testing.T, err error, code goerror.Code, msg string) {
	t.Helper()
	gerr, ok := goerror.As(err)
	require.True(t, ok, "expected *goerror.Error, got %v", err)
	assert.Equal(t, code, gerr.Code())
	assert.Equal(t, msg, gerr.Msg())
}

// --- Issue ---

func TestIssue_RegisterStoresSealedCodeAndMails(t *testing.T) {
	// Arrange
	f := newFixture(t)
	var saved entity.Record
	f.store.On("SaveRecord", mock.Anything, mock.AnythingOfType("entity.Record"), entity.CodeTTL).
		Run(func(args mock.Arguments) { saved = args.Get(1).(entity.Record) }).
		Return(nil)
	f.mail.On("SendCode", mock.Anything, entity.PurposeRegister, "alice@test.com", "123456", entity.CodeTTL).Return(nil)

	// Act
	out, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeRegister, Email: "  Alice@Test.com "})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &IssueOutput{Email: "alice@test.com", ExpiresIn: 600}, out)
	assert.Equal(t, "otp:register:alice@test.com", saved.Key())
	assert.Equal(t, now.Add(entity.CodeTTL), saved.ExpiresAt)
	assert.NotContains(t, saved.Sealed, "123456")
	ok, err := f.sealer.Match(saved.Sealed, "123456")
	require.NoError(t, err)
	assert.True(t, ok)
	f.dir.AssertNotCalled(t, "UserExists", mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestIssue_EchoCode(t *testing.T) {
	f := newFixture(t)
	f.dep.EchoCode = true
	f.store.On("SaveRecord", mock.Anything, mock.Anything, entity.CodeTTL).Return(nil)
	f.mail.On("SendCode", mock.Anything, entity.PurposeRegister, "bob@test.com", "123456", entity.CodeTTL).Return(nil)

	out, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeRegister, Email: "bob@test.com"})

	require.NoError(t, err)
	assert.Equal(t, "123456", out.Code)
}

func TestIssue_CustomTTL(t *testing.T) {
	f := newFixture(t)
	f.dep.TTL = 2 * time.Minute
	f.store.On("SaveRecord", mock.Anything, mock.Anything, 2*time.Minute).Return(nil)
	f.mail.On("SendCode", mock.Anything, entity.PurposeRegister, "bob@test.com", "123456", 2*time.Minute).Return(nil)

	out, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeRegister, Email: "bob@test.com"})

	require.NoError(t, err)
	assert.Equal(t, 120, out.ExpiresIn)
	f.assertAll(t)
}

func TestIssue_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input IssueInput
		msg   string
	}{
		{name: "empty email", input: IssueInput{Purpose: entity.PurposeRegister, Email: "   "}, msg: "Valid email is required"},
		{name: "missing at", input: IssueInput{Purpose: entity.PurposeLogin, Email: "alice.test.com"}, msg: "Valid email is required"},
		{name: "unknown purpose", input: IssueInput{Purpose: entity.PurposeUnknown, Email: "alice@test.com"}, msg: "Unsupported OTP purpose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			out, err := New(f.dep).Issue(context.Background(), tt.input)

			assert.Nil(t, out)
			assertCode(t, err, goerror.CodeInvalidInput, tt.msg)
			f.store.AssertNotCalled(t, "SaveRecord", mock.Anything, mock.Anything, mock.Anything)
			f.mail.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestIssue_LoginUnknownUserWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.dir.On("UserExists", mock.Anything, "ghost@test.com").Return(false, nil)

	_, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeLogin, Email: "Ghost@test.com"})

	assertCode(t, err, goerror.CodeNotFound, "User not found")
	f.store.AssertNotCalled(t, "SaveRecord", mock.Anything, mock.Anything, mock.Anything)
	f.assertAll(t)
}

func TestIssue_LoginDirectoryFailure(t *testing.T) {
	f := newFixture(t)
	f.dir.On("UserExists", mock.Anything, "alice@test.com").Return(false, errors.New("connection reset"))

	_, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeLogin, Email: "alice@test.com"})

	assertCode(t, err, goerror.CodeDependency, "Failed to look up user")
	f.store.AssertNotCalled(t, "SaveRecord", mock.Anything, mock.Anything, mock.Anything)
}

func TestIssue_GeneratorFailure(t *testing.T) {
	f := newFixture(t)
	f.dep.Code = failingCode{}

	_, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeRegister, Email: "alice@test.com"})

	assertCode(t, err, goerror.CodeInternal, "Internal server error")
}

func TestIssue_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.On("SaveRecord", mock.Anything, mock.Anything, entity.CodeTTL).Return(errors.New("401 unauthorized"))

	_, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: entity.PurposeRegister, Email: "alice@test.com"})

	assertCode(t, err, goerror.CodeDependency, "Failed to store OTP")
	f.mail.AssertNotCalled(t, "SendCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIssue_MailFailure(t *testing.T) {
	tests := []struct {
		name    string
		purpose entity.Purpose
		msg     string
	}{
		{name: "register hides cause", purpose: entity.PurposeRegister, msg: "Failed to send OTP email"},
		{name: "login surfaces cause", purpose: entity.PurposeLogin, msg: "Failed to send OTP email: 535 auth failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.dir.On("UserExists", mock.Anything, "alice@test.com").Return(true, nil).Maybe()
			f.store.On("SaveRecord", mock.Anything, mock.Anything, entity.CodeTTL).Return(nil)
			f.mail.On("SendCode", mock.Anything, tt.purpose, "alice@test.com", "123456", entity.CodeTTL).
				Return(errors.New("535 auth failed"))

			_, err := New(f.dep).Issue(context.Background(), IssueInput{Purpose: tt.purpose, Email: "alice@test.com"})

			assertCode(t, err, goerror.CodeDependency, tt.msg)
			f.assertAll(t)
		})
	}
}

// --- Verify ---

func TestVerify_MatchConsumesRecord(t *testing.T) {
	// Arrange
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeRegister, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(rec, nil)
	f.store.On("ConsumeRecord", mock.Anything, *rec).Return(true, nil)

	// Act
	out, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: " ALICE@test.com", Code: " 654321 "})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, &VerifyOutput{Email: "alice@test.com", Verified: true}, out)
	f.token.AssertNotCalled(t, "Generate", mock.Anything)
	f.assertAll(t)
}

func TestVerify_LoginIssuesAccessToken(t *testing.T) {
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeLogin, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeLogin, "alice@test.com").Return(rec, nil)
	f.store.On("ConsumeRecord", mock.Anything, *rec).Return(true, nil)
	f.token.On("Generate", "alice@test.com").Return("signed.jwt.token", nil)

	out, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeLogin, Email: "alice@test.com", Code: "654321"})

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.token", out.AccessToken)
	f.assertAll(t)
}

func TestVerify_LoginWithoutTokenIssuer(t *testing.T) {
	f := newFixture(t)
	f.dep.Token = nil
	rec := &entity.Record{Purpose: entity.PurposeLogin, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeLogin, "alice@test.com").Return(rec, nil)
	f.store.On("ConsumeRecord", mock.Anything, *rec).Return(true, nil)

	out, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeLogin, Email: "alice@test.com", Code: "654321"})

	require.NoError(t, err)
	assert.True(t, out.Verified)
	assert.Empty(t, out.AccessToken)
}

func TestVerify_TokenFailure(t *testing.T) {
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeLogin, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeLogin, "alice@test.com").Return(rec, nil)
	f.store.On("ConsumeRecord", mock.Anything, *rec).Return(true, nil)
	f.token.On("Generate", "alice@test.com").Return("", errors.New("signing failed"))

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeLogin, Email: "alice@test.com", Code: "654321"})

	assertCode(t, err, goerror.CodeInternal, "Internal server error")
}

func TestVerify_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input VerifyInput
		msg   string
	}{
		{name: "missing email", input: VerifyInput{Purpose: entity.PurposeRegister, Code: "123456"}, msg: "Email and OTP are required"},
		{name: "missing code", input: VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "  "}, msg: "Email and OTP are required"},
		{name: "missing at", input: VerifyInput{Purpose: entity.PurposeRegister, Email: "alice", Code: "123456"}, msg: "Valid email is required"},
		{name: "unknown purpose", input: VerifyInput{Email: "alice@test.com", Code: "123456"}, msg: "Unsupported OTP purpose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := New(f.dep).Verify(context.Background(), tt.input)

			assertCode(t, err, goerror.CodeInvalidInput, tt.msg)
			f.store.AssertNotCalled(t, "GetRecord", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestVerify_NotIssued(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(nil, goerror.ErrNotFound)

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "123456"})

	assertCode(t, err, goerror.CodeExpired, "OTP expired or not found")
}

func TestVerify_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(nil, errors.New("i/o timeout"))

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "123456"})

	assertCode(t, err, goerror.CodeDependency, "Failed to read OTP")
}

func TestVerify_MismatchLeavesRecord(t *testing.T) {
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeRegister, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(rec, nil)

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "000000"})

	assertCode(t, err, goerror.CodeMismatch, "Invalid OTP")
	f.store.AssertNotCalled(t, "ConsumeRecord", mock.Anything, mock.Anything)
}

func TestVerify_MalformedRecordTreatedAsMissing(t *testing.T) {
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeRegister, Email: "alice@test.com", Sealed: "123456"}
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(rec, nil)

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "123456"})

	assertCode(t, err, goerror.CodeExpired, "OTP expired or not found")
}

func TestVerify_LostConsumeRace(t *testing.T) {
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeRegister, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(rec, nil)
	f.store.On("ConsumeRecord", mock.Anything, *rec).Return(false, nil)

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "654321"})

	assertCode(t, err, goerror.CodeExpired, "OTP expired or not found")
}

func TestVerify_ConsumeFailure(t *testing.T) {
	f := newFixture(t)
	rec := &entity.Record{Purpose: entity.PurposeRegister, Email: "alice@test.com", Sealed: f.sealed(t, "654321")}
	f.store.On("GetRecord", mock.Anything, entity.PurposeRegister, "alice@test.com").Return(rec, nil)
	f.store.On("ConsumeRecord", mock.Anything, *rec).Return(false, errors.New("EOF"))

	_, err := New(f.dep).Verify(context.Background(), VerifyInput{Purpose: entity.PurposeRegister, Email: "alice@test.com", Code: "654321"})

	assertCode(t, err, goerror.CodeDependency, "Failed to verify OTP")
}
