package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/daybook/internal/calendar"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/cryptox"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/server/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanMailer struct {
	sent chan mailer.ShareMail
	err  error
}

func (m *chanMailer) SendShare(_ context.Context, mail mailer.ShareMail) error {
	m.sent <- mail
	return m.err
}

func newShareFixture(t *testing.T) (*ShareService, *MomentService, *chanMailer) {
	db, _ := newMockDB(t)
	repos := newMemRepos()
	ml := &chanMailer{sent: make(chan mailer.ShareMail, 1)}
	return NewShareService(db, repos, ml, testConfig(), logging.Nop{}),
		NewMomentService(db, repos, logging.Nop{}), ml
}

func TestShareService_ShareAndOpen(t *testing.T) {
	shares, moments, ml := newShareFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	m, err := moments.Insert(ctx, "u1", models.MomentInput{Title: "Lake", Date: calendar.MustParse("2026-10-10")})
	require.NoError(t, err)

	sh, err := shares.Share(ctx, "u1", m.ID, []string{" Friend@Example.com", "friend@example.com", ""})
	require.NoError(t, err)
	cancel()

	assert.True(t, strings.HasPrefix(sh.URL, "https://daybook.test/share/"))
	assert.Equal(t, []string{"friend@example.com"}, sh.Recipients)

	select {
	case mail := <-ml.sent:
		assert.Equal(t, "Lake", mail.Title)
		assert.Equal(t, sh.URL, mail.URL)
	case <-time.After(2 * time.Second):
		t.Fatal("share mail was not sent")
	}

	// only the digest is stored
	repos := shares.repomanager.(*memRepos)
	_, ok := repos.shares[cryptox.TokenDigest(sh.Token)]
	assert.True(t, ok)

	got, err := shares.Open(context.Background(), sh.Token)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestShareService_ShareForeignMoment(t *testing.T) {
	shares, moments, _ := newShareFixture(t)
	ctx := context.Background()

	m, err := moments.Insert(ctx, "u1", models.MomentInput{Title: "Lake", Date: calendar.MustParse("2026-10-10")})
	require.NoError(t, err)

	_, err = shares.Share(ctx, "u2", m.ID, nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = shares.Share(ctx, "u1", m.ID, []string{"not an address"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestShareService_MailFailureDoesNotFailShare(t *testing.T) {
	shares, moments, ml := newShareFixture(t)
	ml.err = errors.New("smtp down")
	ctx := context.Background()

	m, err := moments.Insert(ctx, "u1", models.MomentInput{Title: "Lake", Date: calendar.MustParse("2026-10-10")})
	require.NoError(t, err)

	_, err = shares.Share(ctx, "u1", m.ID, []string{"a@b.c"})
	require.NoError(t, err)
	<-ml.sent
}

func TestShareService_OpenRejects(t *testing.T) {
	shares, moments, _ := newShareFixture(t)
	ctx := context.Background()

	_, err := shares.Open(ctx, "garbage")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	m, err := moments.Insert(ctx, "u1", models.MomentInput{Title: "Lake", Date: calendar.MustParse("2026-10-10")})
	require.NoError(t, err)
	sh, err := shares.Share(ctx, "u1", m.ID, nil)
	require.NoError(t, err)

	shares.now = func() time.Time { return sh.ExpiresAt.Add(time.Second) }
	_, err = shares.Open(ctx, sh.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	shares.now = time.Now
	require.NoError(t, moments.Delete(ctx, "u1", m.ID))
	_, err = shares.Open(ctx, sh.Token)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
