package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/cryptox"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
	"github.com/dmitrijs2005/daybook/internal/server/auth"
	"github.com/dmitrijs2005/daybook/internal/server/config"
	"github.com/dmitrijs2005/daybook/internal/server/mailer"
	sm "github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxShareRecipients = 20

// ShareService issues read-only links to single moments.
type ShareService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	mailer      mailer.Mailer
	logger      logging.Logger
	secret      []byte
	ttl         time.Duration
	baseURL     string
	now         func() time.Time
}

func NewShareService(db *sql.DB, m repomanager.RepositoryManager, ml mailer.Mailer, cfg *config.Config, l logging.Logger) *ShareService {
	return &ShareService{
		db:          db,
		repomanager: m,
		mailer:      ml,
		logger:      l.With("module", "shares"),
		secret:      []byte(cfg.SecretKey),
		ttl:         cfg.ShareTokenValidityDuration,
		baseURL:     cfg.ShareBaseURL,
		now:         time.Now,
	}
}

// Share creates a link for the caller's moment and notifies recipients in the
// background. Mail failures are logged and do not fail the share.
func (s *ShareService) Share(ctx context.Context, userID, momentID string, recipients []string) (*models.Share, error) {
	recipients, err := normalizeRecipients(recipients)
	if err != nil {
		return nil, err
	}

	moment, err := s.repomanager.Moments(s.db).Get(ctx, userID, momentID)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	token, exp, err := auth.GenerateShareToken(id, moment.ID, s.secret, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("sign share token: %w", err)
	}

	g, err := s.repomanager.Shares(s.db).Create(ctx, &sm.ShareGrant{
		ID:          id,
		MomentID:    moment.ID,
		UserID:      userID,
		TokenDigest: cryptox.TokenDigest(token),
		Recipients:  recipients,
		ExpiresAt:   exp,
	})
	if err != nil {
		return nil, err
	}

	share := &models.Share{
		ID:         g.ID,
		MomentID:   g.MomentID,
		UserID:     g.UserID,
		Token:      token,
		URL:        s.baseURL + token,
		Recipients: g.Recipients,
		ExpiresAt:  g.ExpiresAt,
		CreatedAt:  g.CreatedAt,
	}

	if len(recipients) > 0 && s.mailer != nil {
		bg := context.WithoutCancel(ctx)
		go func() {
			err := s.mailer.SendShare(bg, mailer.ShareMail{
				From:       userID,
				Recipients: recipients,
				Title:      moment.Title,
				URL:        share.URL,
			})
			if err != nil {
				s.logger.Warn(bg, "share mail failed", "share_id", share.ID, "error", err)
			}
		}()
	}
	return share, nil
}

// Open resolves a share token to its moment. Unknown, forged and expired
// tokens are all reported as common.ErrorNotFound.
func (s *ShareService) Open(ctx context.Context, token string) (*models.Moment, error) {
	claims, err := auth.ParseShareToken(token, s.secret)
	if err != nil {
		return nil, common.ErrorNotFound
	}

	g, err := s.repomanager.Shares(s.db).GetByDigest(ctx, cryptox.TokenDigest(token))
	if err != nil {
		return nil, err
	}
	if g.ID != claims.ShareID || !s.now().Before(g.ExpiresAt) {
		return nil, common.ErrorNotFound
	}
	return s.repomanager.Moments(s.db).Get(ctx, g.UserID, g.MomentID)
}

func normalizeRecipients(in []string) ([]string, error) {
	if len(in) > maxShareRecipients {
		return nil, &models.ValidationError{Field: "recipients", Reason: fmt.Sprintf("must not exceed %d", maxShareRecipients)}
	}
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" || seen[r] {
			continue
		}
		if _, err := mail.ParseAddress(r); err != nil {
			return nil, &models.ValidationError{Field: "recipients", Reason: fmt.Sprintf("contains invalid address %q", r)}
		}
		seen[r] = true
		out = append(out, r)
	}
	return out, nil
}
