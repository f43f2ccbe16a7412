package matchadmin

import (
	"context"
	"crypto/subtle"
	"strconv"
	"time"

	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/bookbuddy/matchengine/internal/app"
	"github.com/bookbuddy/matchengine/internal/config"
	svcErr "github.com/bookbuddy/matchengine/internal/errors"
	"github.com/bookbuddy/matchengine/internal/matching"
	"github.com/bookbuddy/matchengine/internal/repository"
)

const tokenHeader = "x-admin-token"

// Service implements the MatchAdmin API: the operator surface for
// triggering a cycle manually and inspecting its output.
type Service struct {
	appCtx      *app.AppContext
	cfg         *config.Config
	engine      *matching.Engine
	pairingRepo *repository.PairingRepository
}

// NewService creates a MatchAdmin service around an engine instance.
func NewService(appCtx *app.AppContext, cfg *config.Config, engine *matching.Engine) *Service {
	return &Service{
		appCtx:      appCtx,
		cfg:         cfg,
		engine:      engine,
		pairingRepo: repository.NewPairingRepository(appCtx.DB),
	}
}

// authorize enforces the admin token on every RPC. With no token
// configured the manual surface stays disabled.
func (s *Service) authorize(ctx context.Context) error {
	if s.cfg.Admin.Token == "" {
		return svcErr.Unauthenticated("admin surface is not configured")
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return svcErr.Unauthenticated("missing admin token")
	}
	values := md.Get(tokenHeader)
	if len(values) == 0 {
		return svcErr.Unauthenticated("missing admin token")
	}
	if subtle.ConstantTimeCompare([]byte(values[0]), []byte(s.cfg.Admin.Token)) != 1 {
		return svcErr.Unauthenticated("invalid admin token")
	}
	return nil
}

// TriggerCycle runs one matching cycle on demand. The request value is
// an optional period id override (empty derives the current ISO week).
func (s *Service) TriggerCycle(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	periodID := req.GetValue()
	s.appCtx.Logger.Info("manual cycle trigger", "period_id", periodID)

	result, err := s.engine.Run(ctx, periodID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	// refresh cached pairing counts for a fresh cycle, best effort
	s.refreshCounts(ctx, result)

	return structpb.NewStruct(map[string]interface{}{
		"period_id":      result.PeriodID,
		"eligible_users": result.EligibleUsers,
		"pair_count":     result.PairCount,
		"mean_score":     result.MeanScore,
		"duration_ms":    result.Duration.Milliseconds(),
	})
}

// GetCycleReport returns the persisted report for a period id.
func (s *Service) GetCycleReport(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	periodID := req.GetValue()
	if periodID == "" {
		return nil, svcErr.InvalidArgument("period_id is required")
	}

	report, err := s.pairingRepo.GetReport(ctx, periodID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"period_id":      report.PeriodID,
		"eligible_users": report.EligibleUsers,
		"pair_count":     report.PairCount,
		"mean_score":     report.MeanScore,
		"top_authors":    toInterfaces(report.TopAuthors),
		"top_categories": toInterfaces(report.TopCategories),
		"duration_ms":    report.DurationMillis,
		"created_at":     report.CreatedAt.Format(time.RFC3339),
	})
}

// ListPairings pages through a user's pairing history. Request fields:
// user_id (string, required), pagination_token (string), limit (number).
func (s *Service) ListPairings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.authorize(ctx); err != nil {
		return nil, err
	}

	fields := req.GetFields()
	userID, err := strconv.ParseUint(fields["user_id"].GetStringValue(), 10, 64)
	if err != nil {
		return nil, svcErr.InvalidArgument("user_id must be a valid uint64")
	}

	var token *string
	if t := fields["pagination_token"].GetStringValue(); t != "" {
		token = &t
	}
	limit := int(fields["limit"].GetNumberValue())
	if limit <= 0 {
		limit = 20
	}

	pairings, nextToken, err := s.pairingRepo.ListForUser(ctx, userID, token, limit)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	items := make([]interface{}, 0, len(pairings))
	for _, p := range pairings {
		items = append(items, map[string]interface{}{
			"id":                p.ID,
			"partner_id":        strconv.FormatUint(p.PartnerID, 10),
			"period_id":         p.PeriodID,
			"score":             p.Score,
			"shared_authors":    toInterfaces(p.SharedAuthors),
			"shared_categories": toInterfaces(p.SharedCategories),
			"notified":          p.Notified,
			"responded":         p.Responded,
		})
	}

	total, err := s.pairingCount(ctx, userID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	resp := map[string]interface{}{
		"pairings":      items,
		"pairing_count": total,
	}
	if nextToken != nil {
		resp["next_pagination_token"] = *nextToken
	}
	return structpb.NewStruct(resp)
}

// pairingCount serves the per-user total cache-first: a hit is
// returned as-is, a miss falls back to the database and rewrites the
// cache. Cache failures degrade to the database path.
func (s *Service) pairingCount(ctx context.Context, userID uint64) (int64, error) {
	if s.appCtx.RedisCache != nil {
		count, found, err := s.appCtx.RedisCache.GetPairingCount(ctx, userID)
		if err != nil {
			s.appCtx.Logger.Warn("pairing count cache read failed", "user_id", userID, "err", err)
		} else if found {
			return count, nil
		}
	}

	count, err := s.pairingRepo.CountForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.appCtx.RedisCache != nil {
		if err := s.appCtx.RedisCache.UpdatePairingCount(ctx, userID, count); err != nil {
			s.appCtx.Logger.Warn("pairing count cache refresh failed", "user_id", userID, "err", err)
		}
	}
	return count, nil
}

// refreshCounts updates the cache-first per-user pairing counters after
// a cycle, mirroring the count caching on the read path. Failures are
// logged only.
func (s *Service) refreshCounts(ctx context.Context, result *matching.Result) {
	if s.appCtx.RedisCache == nil || result.PairCount == 0 {
		return
	}
	pairings, err := s.pairingRepo.CreatedSince(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		s.appCtx.Logger.Warn("failed to load pairings for count refresh", "err", err)
		return
	}

	// each accepted pair yields two directional rows; count each
	// subject once
	subjects := make(map[uint64]struct{}, len(pairings))
	for _, p := range pairings {
		subjects[p.SubjectID] = struct{}{}
	}
	for userID := range subjects {
		count, err := s.pairingRepo.CountForUser(ctx, userID)
		if err != nil {
			s.appCtx.Logger.Warn("failed to count pairings for cache refresh", "user_id", userID, "err", err)
			continue
		}
		if err := s.appCtx.RedisCache.UpdatePairingCount(ctx, userID, count); err != nil {
			s.appCtx.Logger.Warn("failed to refresh cached pairing count", "user_id", userID, "err", err)
		}
	}
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
