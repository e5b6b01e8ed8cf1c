package legacy

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/daybook/internal/filex"
	"github.com/dmitrijs2005/daybook/internal/logging"
	"github.com/dmitrijs2005/daybook/internal/models"
)

const importBatchSize = 100

// Remote is the part of the server API the one-time import uses.
type Remote interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ImportMoments(ctx context.Context, userID string, inputs []models.MomentInput) (imported, skipped int, err error)
	MarkMigrated(ctx context.Context, userID string) (*models.Profile, error)
}

type Result struct {
	AlreadyMigrated bool
	Imported        int
	Skipped         int
}

// Migrate imports the legacy store at path into userID's account unless the
// profile says it was done already. The import is idempotent by legacy id,
// so a run that fails half way can simply be repeated. The profile is
// flagged only after every batch went through; a missing store counts as
// an empty one.
func Migrate(ctx context.Context, path string, remote Remote, userID string, log logging.Logger) (Result, error) {
	if log == nil {
		log = logging.Nop{}
	}
	log = log.With("module", "legacy", "user_id", userID)

	profile, err := remote.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("get profile: %w", err)
	}
	if profile.Migrated {
		return Result{AlreadyMigrated: true}, nil
	}

	var res Result
	if path != "" {
		exists, err := filex.Exists(path)
		if err != nil {
			return Result{}, err
		}
		if exists {
			res, err = importFile(ctx, path, remote, userID)
			if err != nil {
				return res, err
			}
		}
	}

	if _, err := remote.MarkMigrated(ctx, userID); err != nil {
		return res, fmt.Errorf("mark migrated: %w", err)
	}
	log.Info(ctx, "legacy import finished", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func importFile(ctx context.Context, path string, remote Remote, userID string) (Result, error) {
	store, err := Open(ctx, path)
	if err != nil {
		return Result{}, err
	}
	defer store.Close()

	records, err := store.All(ctx)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for start := 0; start < len(records); start += importBatchSize {
		batch := records[start:min(start+importBatchSize, len(records))]
		inputs := make([]models.MomentInput, len(batch))
		for i, r := range batch {
			inputs[i] = r.Input()
		}
		imported, skipped, err := remote.ImportMoments(ctx, userID, inputs)
		if err != nil {
			return res, fmt.Errorf("import batch at %d: %w", start, err)
		}
		res.Imported += imported
		res.Skipped += skipped
	}
	return res, nil
}
