// Package leaderboard keeps a Redis serving copy of final session standings.
// Postgres participants remain authoritative; the ZSET exists so the live
// leaderboard screen reads rankings without hitting the store.
package leaderboard

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Suyash56/quizzy-pop/internal/session"
)

// Entry represents one ranked participant sent to clients.
type Entry struct {
	Rank          int       `json:"rank"`
	ParticipantID uuid.UUID `json:"participant_id"`
	Name          string    `json:"name"`
	Score         int       `json:"score"`
}

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN           int
	EntryTTL       time.Duration
	RedisKeyPrefix string
}

// Service manages per-session standings in Redis.
type Service struct {
	redis    *redis.Client
	logger   zerolog.Logger
	topN     int
	entryTTL time.Duration
	prefix   string
}

// NewService constructs a leaderboard service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	ttl := opts.EntryTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}

	return &Service{
		redis:    redis,
		logger:   logger.With().Str("component", "leaderboard").Logger(),
		topN:     topN,
		entryTTL: ttl,
		prefix:   prefix,
	}
}

// RecordStandings snapshots a session's final standings. ZAdd overwrites
// rather than increments, so recording is idempotent and a recomputed
// scoring pass simply replaces the previous snapshot. Keys expire after
// the TTL; the store keeps the scores forever.
func (s *Service) RecordStandings(ctx context.Context, sessionID uuid.UUID, standings []session.Standing) error {
	if len(standings) == 0 {
		return nil
	}

	zKey := s.standingsKey(sessionID)

	pipe := s.redis.TxPipeline()
	for _, st := range standings {
		pipe.ZAdd(ctx, zKey, redis.Z{
			Score:  float64(st.Score),
			Member: st.ParticipantID.String(),
		})
		metaKey := s.metaKey(sessionID, st.ParticipantID)
		pipe.HSet(ctx, metaKey, map[string]interface{}{
			"name":  st.Name,
			"score": st.Score,
		})
		pipe.Expire(ctx, metaKey, s.entryTTL)
	}
	pipe.Expire(ctx, zKey, s.entryTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record standings for session %s: %w", sessionID, err)
	}

	s.logger.Info().
		Str("session_id", sessionID.String()).
		Int("entries", len(standings)).
		Msg("standings recorded")
	return nil
}

// Top retrieves the top N standings for a session, highest score first.
func (s *Service) Top(ctx context.Context, sessionID uuid.UUID, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	zKey := s.standingsKey(sessionID)
	results, err := s.redis.ZRevRangeWithScores(ctx, zKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		participantID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn().Str("member", member).Msg("malformed standings member skipped")
			continue
		}
		entry := Entry{
			Rank:          i + 1,
			ParticipantID: participantID,
			Score:         int(z.Score),
		}
		if meta, err := s.redis.HGetAll(ctx, s.metaKey(sessionID, participantID)).Result(); err == nil && len(meta) > 0 {
			entry.Name = meta["name"]
			if entry.Score == 0 {
				entry.Score = parseInt(meta["score"])
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) standingsKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, sessionID.String())
}

func (s *Service) metaKey(sessionID, participantID uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s:meta:%s", s.prefix, sessionID.String(), participantID.String())
}

func parseInt(val string) int {
	if val == "" {
		return 0
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return i
}
