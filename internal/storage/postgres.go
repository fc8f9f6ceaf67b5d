package storage

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/eddowding/abelique-matching/internal/config"
	"github.com/eddowding/abelique-matching/internal/matching"
	"github.com/eddowding/abelique-matching/internal/models"
)

//go:embed schema.sql
var schemaSQL string

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxConns)
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema applies the embedded DDL. Every statement is idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// --- Groups ---

func (s *PostgresStore) CreateGroup(ctx context.Context, g *models.Group) error {
	g.ID = uuid.New()
	err := s.pool.QueryRow(ctx,
		`INSERT INTO groups (id, name, slug, description, invite_code, access_code, creator_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING created_at, updated_at`,
		g.ID, g.Name, g.Slug, g.Description, g.InviteCode, g.AccessCode, g.CreatorID,
	).Scan(&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetGroup(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	return s.groupBy(ctx, "id = $1", id)
}

func (s *PostgresStore) GroupBySlug(ctx context.Context, slug string) (*models.Group, error) {
	return s.groupBy(ctx, "slug = $1", slug)
}

func (s *PostgresStore) GroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	return s.groupBy(ctx, "invite_code = $1", code)
}

func (s *PostgresStore) groupBy(ctx context.Context, where string, arg any) (*models.Group, error) {
	g := &models.Group{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, slug, description, invite_code, COALESCE(access_code, ''), creator_id, created_at, updated_at
		 FROM groups WHERE `+where, arg,
	).Scan(&g.ID, &g.Name, &g.Slug, &g.Description, &g.InviteCode, &g.AccessCode, &g.CreatorID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) CountMembers(ctx context.Context, groupID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1`, groupID,
	).Scan(&count)
	return count, err
}

// --- Members ---

func (s *PostgresStore) CreateMember(ctx context.Context, m *models.Member) error {
	m.ID = uuid.New()
	if m.Role == "" {
		m.Role = models.RoleMember
	}
	if len(m.ProfileData) == 0 {
		m.ProfileData = json.RawMessage("{}")
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO group_members (id, group_id, user_id, full_name, email, role, profile_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING joined_at, updated_at`,
		m.ID, m.GroupID, m.UserID, m.FullName, m.Email, m.Role, m.ProfileData,
	).Scan(&m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("member already exists for (group, user): %w", err)
		}
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

// GetMember returns the member row for (group, user), including the
// stored embedding, or (nil, nil) when the user is not a member.
func (s *PostgresStore) GetMember(ctx context.Context, groupID, userID uuid.UUID) (*models.Member, error) {
	m := &models.Member{}
	var vec *pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT id, group_id, user_id, full_name, email, role, profile_data, embedding, COALESCE(photo_key, ''), joined_at, updated_at
		 FROM group_members WHERE group_id = $1 AND user_id = $2`,
		groupID, userID,
	).Scan(&m.ID, &m.GroupID, &m.UserID, &m.FullName, &m.Email, &m.Role, &m.ProfileData, &vec, &m.PhotoKey, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member: %w", err)
	}
	if vec != nil {
		m.Embedding = vec.Slice()
	}
	return m, nil
}

func (s *PostgresStore) GetMemberByID(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	m := &models.Member{}
	var vec *pgvector.Vector
	err := s.pool.QueryRow(ctx,
		`SELECT id, group_id, user_id, full_name, email, role, profile_data, embedding, COALESCE(photo_key, ''), joined_at, updated_at
		 FROM group_members WHERE id = $1`, memberID,
	).Scan(&m.ID, &m.GroupID, &m.UserID, &m.FullName, &m.Email, &m.Role, &m.ProfileData, &vec, &m.PhotoKey, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by id: %w", err)
	}
	if vec != nil {
		m.Embedding = vec.Slice()
	}
	return m, nil
}

// UpdateMemberProfile stores new profile data and the matching
// embedding in one write. A nil embedding clears the stored vector:
// the profile save must succeed even when the embedding provider does
// not, and a stale vector must never survive a profile edit.
func (s *PostgresStore) UpdateMemberProfile(ctx context.Context, memberID uuid.UUID, profileData json.RawMessage, embedding []float32) (*models.Member, error) {
	var vec *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vec = &v
	}

	m := &models.Member{ID: memberID, ProfileData: profileData, Embedding: embedding}
	err := s.pool.QueryRow(ctx,
		`UPDATE group_members SET profile_data = $1, embedding = $2, updated_at = now()
		 WHERE id = $3
		 RETURNING group_id, user_id, full_name, email, role, COALESCE(photo_key, ''), joined_at, updated_at`,
		profileData, vec, memberID,
	).Scan(&m.GroupID, &m.UserID, &m.FullName, &m.Email, &m.Role, &m.PhotoKey, &m.JoinedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update member profile: %w", err)
	}
	return m, nil
}

func (s *PostgresStore) SetMemberEmbedding(ctx context.Context, memberID uuid.UUID, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := s.pool.Exec(ctx,
		`UPDATE group_members SET embedding = $1, updated_at = now() WHERE id = $2`,
		vec, memberID)
	if err != nil {
		return fmt.Errorf("set member embedding: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetMemberPhotoKey(ctx context.Context, memberID uuid.UUID, key string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE group_members SET photo_key = $1, updated_at = now() WHERE id = $2`,
		key, memberID)
	if err != nil {
		return fmt.Errorf("set member photo key: %w", err)
	}
	return nil
}

// MembersMissingEmbedding lists members whose profile has text but no
// stored vector, for the backfill worker.
func (s *PostgresStore) MembersMissingEmbedding(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM group_members WHERE embedding IS NULL AND profile_data <> '{}'::jsonb`)
	if err != nil {
		return nil, fmt.Errorf("list members missing embedding: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// --- Similarity ranking ---

// RankMembers runs the group-scoped cosine nearest-neighbor query.
// The secondary ORDER BY on user_id makes equal-similarity ordering
// deterministic, which pagination depends on: identical profiles are
// common and must not reshuffle between page fetches.
func (s *PostgresStore) RankMembers(ctx context.Context, groupID, requesterID uuid.UUID, query []float32, limit int) ([]matching.Candidate, error) {
	if limit <= 0 {
		limit = 500
	}
	vec := pgvector.NewVector(query)

	rows, err := s.pool.Query(ctx,
		`SELECT user_id, full_name, email, COALESCE(profile_data->>'linkedin_url', ''), profile_data,
		        1 - (embedding <=> $1) AS similarity
		 FROM group_members
		 WHERE group_id = $2 AND user_id <> $3 AND embedding IS NOT NULL
		 ORDER BY embedding <=> $1, user_id
		 LIMIT $4`,
		vec, groupID, requesterID, limit)
	if err != nil {
		return nil, fmt.Errorf("rank members: %w", err)
	}
	defer rows.Close()

	var candidates []matching.Candidate
	for rows.Next() {
		var c matching.Candidate
		if err := rows.Scan(&c.UserID, &c.FullName, &c.Email, &c.LinkedInURL, &c.ProfileData, &c.Similarity); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// --- Exclusions ---

func (s *PostgresStore) HiddenTargets(ctx context.Context, groupID, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.idList(ctx,
		`SELECT hidden_id FROM group_hidden_profiles
		 WHERE group_id = $1 AND user_id = $2 AND hidden_until > now()`,
		groupID, userID)
}

func (s *PostgresStore) RequestedTargets(ctx context.Context, groupID, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.idList(ctx,
		`SELECT target_id FROM group_match_requests
		 WHERE group_id = $1 AND requester_id = $2`,
		groupID, userID)
}

func (s *PostgresStore) ConnectedCounterparts(ctx context.Context, groupID, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.idList(ctx,
		`SELECT CASE WHEN user_a = $2 THEN user_b ELSE user_a END
		 FROM group_connections
		 WHERE group_id = $1 AND (user_a = $2 OR user_b = $2)`,
		groupID, userID)
}

func (s *PostgresStore) idList(ctx context.Context, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Match requests ---

func (s *PostgresStore) CreateRequest(ctx context.Context, groupID, requesterID, targetID uuid.UUID) (*models.MatchRequest, error) {
	req := &models.MatchRequest{
		ID:          uuid.New(),
		GroupID:     groupID,
		RequesterID: requesterID,
		TargetID:    targetID,
		Status:      models.RequestPending,
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO group_match_requests (id, group_id, requester_id, target_id, status)
		 VALUES ($1, $2, $3, $4, $5) RETURNING created_at`,
		req.ID, req.GroupID, req.RequesterID, req.TargetID, req.Status,
	).Scan(&req.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, matching.ErrDuplicateRequest
		}
		return nil, fmt.Errorf("create match request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) PendingRequest(ctx context.Context, groupID, requesterID, targetID uuid.UUID) (*models.MatchRequest, error) {
	req := &models.MatchRequest{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, group_id, requester_id, target_id, status, created_at
		 FROM group_match_requests
		 WHERE group_id = $1 AND requester_id = $2 AND target_id = $3 AND status = 'pending'`,
		groupID, requesterID, targetID,
	).Scan(&req.ID, &req.GroupID, &req.RequesterID, &req.TargetID, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get pending request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) RequestByID(ctx context.Context, groupID, requestID uuid.UUID) (*models.MatchRequest, error) {
	req := &models.MatchRequest{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, group_id, requester_id, target_id, status, created_at
		 FROM group_match_requests WHERE group_id = $1 AND id = $2`,
		groupID, requestID,
	).Scan(&req.ID, &req.GroupID, &req.RequesterID, &req.TargetID, &req.Status, &req.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request: %w", err)
	}
	return req, nil
}

func (s *PostgresStore) AcceptRequests(ctx context.Context, ids []uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE group_match_requests SET status = 'accepted' WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("accept requests: %w", err)
	}
	return nil
}

// IncomingRequest is a pending request joined with the requester's
// member profile.
type IncomingRequest struct {
	Request   models.MatchRequest
	Requester models.Member
}

func (s *PostgresStore) IncomingRequests(ctx context.Context, groupID, targetID uuid.UUID) ([]IncomingRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.id, r.group_id, r.requester_id, r.target_id, r.status, r.created_at,
		        m.id, m.user_id, m.full_name, m.email, m.profile_data
		 FROM group_match_requests r
		 JOIN group_members m ON m.group_id = r.group_id AND m.user_id = r.requester_id
		 WHERE r.group_id = $1 AND r.target_id = $2 AND r.status = 'pending'
		 ORDER BY r.created_at DESC`,
		groupID, targetID)
	if err != nil {
		return nil, fmt.Errorf("list incoming requests: %w", err)
	}
	defer rows.Close()

	var reqs []IncomingRequest
	for rows.Next() {
		var ir IncomingRequest
		if err := rows.Scan(
			&ir.Request.ID, &ir.Request.GroupID, &ir.Request.RequesterID, &ir.Request.TargetID,
			&ir.Request.Status, &ir.Request.CreatedAt,
			&ir.Requester.ID, &ir.Requester.UserID, &ir.Requester.FullName, &ir.Requester.Email,
			&ir.Requester.ProfileData,
		); err != nil {
			return nil, fmt.Errorf("scan incoming request: %w", err)
		}
		ir.Requester.GroupID = groupID
		reqs = append(reqs, ir)
	}
	return reqs, rows.Err()
}

// --- Connections ---

// CreateConnection inserts the canonical unordered pair. The unique
// index on (group_id, user_a, user_b) makes concurrent mutual sends
// converge on a single row; ON CONFLICT falls through to re-reading it.
func (s *PostgresStore) CreateConnection(ctx context.Context, groupID, userA, userB uuid.UUID) (*models.Connection, error) {
	low, high := models.OrderedPair(userA, userB)

	conn := &models.Connection{ID: uuid.New(), GroupID: groupID, UserA: low, UserB: high}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO group_connections (id, group_id, user_a, user_b)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (group_id, user_a, user_b) DO NOTHING
		 RETURNING created_at`,
		conn.ID, conn.GroupID, conn.UserA, conn.UserB,
	).Scan(&conn.CreatedAt)
	if err == nil {
		return conn, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("create connection: %w", err)
	}

	// Lost the race; the row already exists.
	err = s.pool.QueryRow(ctx,
		`SELECT id, group_id, user_a, user_b, COALESCE(match_reason, ''), created_at
		 FROM group_connections WHERE group_id = $1 AND user_a = $2 AND user_b = $3`,
		groupID, low, high,
	).Scan(&conn.ID, &conn.GroupID, &conn.UserA, &conn.UserB, &conn.MatchReason, &conn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get existing connection: %w", err)
	}
	return conn, nil
}

// MemberConnection is a connection resolved to "the other party".
type MemberConnection struct {
	Connection models.Connection
	Other      models.Member
}

func (s *PostgresStore) ListConnections(ctx context.Context, groupID, userID uuid.UUID) ([]MemberConnection, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.id, c.group_id, c.user_a, c.user_b, COALESCE(c.match_reason, ''), c.created_at,
		        m.id, m.user_id, m.full_name, m.email, m.profile_data
		 FROM group_connections c
		 JOIN group_members m ON m.group_id = c.group_id
		   AND m.user_id = CASE WHEN c.user_a = $2 THEN c.user_b ELSE c.user_a END
		 WHERE c.group_id = $1 AND (c.user_a = $2 OR c.user_b = $2)
		 ORDER BY c.created_at DESC`,
		groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []MemberConnection
	for rows.Next() {
		var mc MemberConnection
		if err := rows.Scan(
			&mc.Connection.ID, &mc.Connection.GroupID, &mc.Connection.UserA, &mc.Connection.UserB,
			&mc.Connection.MatchReason, &mc.Connection.CreatedAt,
			&mc.Other.ID, &mc.Other.UserID, &mc.Other.FullName, &mc.Other.Email, &mc.Other.ProfileData,
		); err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		mc.Other.GroupID = groupID
		conns = append(conns, mc)
	}
	return conns, rows.Err()
}

// --- Suppressions ---

func (s *PostgresStore) UpsertSuppression(ctx context.Context, sup *models.Suppression) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO group_hidden_profiles (group_id, user_id, hidden_id, hidden_until)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (group_id, user_id, hidden_id)
		 DO UPDATE SET hidden_until = EXCLUDED.hidden_until
		 RETURNING created_at`,
		sup.GroupID, sup.UserID, sup.HiddenID, sup.HiddenUntil,
	).Scan(&sup.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert suppression: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSuppression(ctx context.Context, groupID, userID, hiddenID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM group_hidden_profiles WHERE group_id = $1 AND user_id = $2 AND hidden_id = $3`,
		groupID, userID, hiddenID)
	if err != nil {
		return fmt.Errorf("delete suppression: %w", err)
	}
	return nil
}

// PruneExpiredSuppressions removes rows whose expiry passed more than
// the given grace period ago. Expired rows are already invisible to the
// exclusion queries; this just keeps the table from growing forever.
func (s *PostgresStore) PruneExpiredSuppressions(ctx context.Context, grace time.Duration) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM group_hidden_profiles WHERE hidden_until < now() - $1::interval`,
		fmt.Sprintf("%d seconds", int(grace.Seconds())))
	if err != nil {
		return 0, fmt.Errorf("prune suppressions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
