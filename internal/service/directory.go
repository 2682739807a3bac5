package service

import (
	"context"
	"sort"
	"time"

	"sellerlift/backend/internal/models"
	"sellerlift/backend/internal/repository"
	"sellerlift/backend/pkg/cache"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/shared/observability"
)

const directoryCacheKey = "chat:directory"

// AccountLookup lists the registered seller accounts so the directory
// can show them even before their first message. The user service
// implements it.
type AccountLookup interface {
	RegisteredAccounts(ctx context.Context) ([]models.RegisteredAccount, error)
}

// DirectoryService derives the operator's conversation listing from
// the recent message log, the state table and the account register.
// The merge itself is a pure function; the service adds storage access
// and a short-lived snapshot cache.
type DirectoryService struct {
	messages repository.MessageRepository
	states   repository.StateRepository
	accounts AccountLookup
	cache    *cache.Cache
	log      *logger.Logger
	metrics  *observability.Metrics

	recentWindow int
	snapshotTTL  time.Duration
}

func NewDirectoryService(
	messages repository.MessageRepository,
	states repository.StateRepository,
	accounts AccountLookup,
	snapshotCache *cache.Cache,
	log *logger.Logger,
	metrics *observability.Metrics,
	recentWindow int,
	snapshotTTL time.Duration,
) *DirectoryService {
	return &DirectoryService{
		messages:     messages,
		states:       states,
		accounts:     accounts,
		cache:        snapshotCache,
		log:          log,
		metrics:      metrics,
		recentWindow: recentWindow,
		snapshotTTL:  snapshotTTL,
	}
}

// BuildDirectory merges recent messages, lifecycle states and the
// registered account list into the partitioned directory. Accounts
// with no messages still get an entry, anchored at their signup time.
// Deleted conversations are omitted entirely. Both partitions are
// sorted newest activity first.
func BuildDirectory(messages []models.Message, states []models.ConversationState, accounts []models.RegisteredAccount) models.Directory {
	stateByConv := make(map[string]*models.ConversationState, len(states))
	for i := range states {
		stateByConv[states[i].ConversationID] = &states[i]
	}

	registered := make(map[string]bool, len(accounts))
	for _, account := range accounts {
		registered[account.Email] = true
	}

	summaries := make(map[string]*models.ConversationSummary)
	for i := range messages {
		m := &messages[i]
		existing, ok := summaries[m.ConversationID]
		if !ok {
			summaries[m.ConversationID] = &models.ConversationSummary{
				ConversationID: m.ConversationID,
				Registered:     registered[m.ConversationID],
				LastActivityAt: m.CreatedAt,
				LastBody:       m.Body,
			}
			continue
		}
		if m.CreatedAt.After(existing.LastActivityAt) {
			existing.LastActivityAt = m.CreatedAt
			existing.LastBody = m.Body
		}
	}

	// Every registered seller belongs in the listing even before their
	// first message; signup time stands in for last activity.
	for _, account := range accounts {
		if _, ok := summaries[account.Email]; ok {
			continue
		}
		summaries[account.Email] = &models.ConversationSummary{
			ConversationID: account.Email,
			Registered:     true,
			LastActivityAt: account.CreatedAt,
		}
	}

	var directory models.Directory
	for convID, summary := range summaries {
		switch stateByConv[convID].Lifecycle() {
		case models.ConversationDeleted:
			continue
		case models.ConversationArchived:
			summary.Archived = true
			directory.Archived = append(directory.Archived, *summary)
		default:
			directory.Active = append(directory.Active, *summary)
		}
	}

	byRecency := func(entries []models.ConversationSummary) {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].LastActivityAt.After(entries[j].LastActivityAt)
		})
	}
	byRecency(directory.Active)
	byRecency(directory.Archived)

	return directory
}

// Directory returns the current conversation listing, serving a cached
// snapshot when one is fresh enough
func (s *DirectoryService) Directory(ctx context.Context) (models.Directory, error) {
	if cached, found := s.cache.Get(directoryCacheKey); found {
		if snapshot, ok := cached.(models.Directory); ok {
			return snapshot, nil
		}
	}
	return s.Refresh(ctx)
}

// Refresh rebuilds the directory from the stores and caches the result
func (s *DirectoryService) Refresh(ctx context.Context) (models.Directory, error) {
	messages, err := s.messages.ListRecent(s.recentWindow)
	if err != nil {
		s.log.Error("directory refresh: recent messages", "error", err)
		return models.Directory{}, errors.NewTransportError("failed to load recent messages")
	}

	states, err := s.states.List()
	if err != nil {
		s.log.Error("directory refresh: conversation states", "error", err)
		return models.Directory{}, errors.NewTransportError("failed to load conversation states")
	}

	accounts, err := s.accounts.RegisteredAccounts(ctx)
	if err != nil {
		// The listing is still useful without the account union.
		s.log.Warn("directory refresh: account lookup failed", "error", err)
		accounts = nil
	}

	directory := BuildDirectory(messages, states, accounts)

	s.cache.SetWithExpiration(directoryCacheKey, directory, s.snapshotTTL)
	s.metrics.DirectoryRefreshes.Inc()
	return directory, nil
}

// Invalidate drops the cached snapshot so the next read rebuilds. The
// feed consumer calls this when a chat event arrives.
func (s *DirectoryService) Invalidate() {
	s.cache.Delete(directoryCacheKey)
}
