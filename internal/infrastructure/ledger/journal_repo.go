package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/infrastructure/storage/postgres"
)

// JournalRepo writes journal entries into journal_entries / journal_lines.
type JournalRepo struct {
	txm *postgres.TxManager
}

// NewJournalRepo creates a new journal repository.
func NewJournalRepo(txm *postgres.TxManager) *JournalRepo {
	return &JournalRepo{txm: txm}
}

func (r *JournalRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Write inserts j unless an entry with the same idempotency key exists,
// and returns the entry id either way.
func (r *JournalRepo) Write(ctx context.Context, j Journal, actorID string) (string, error) {
	querier := r.txm.GetQuerier(ctx)

	accountIDs, err := r.resolveAccounts(ctx, j)
	if err != nil {
		return "", err
	}

	sql, args, err := insertEntryQuery(r.builder(), id.New(), j, actorID).ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert entry: %w", err)
	}

	var entryID id.ID
	err = querier.QueryRow(ctx, sql, args...).Scan(&entryID)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.existingEntry(ctx, j.IdempotencyKey)
	}
	if err != nil {
		return "", fmt.Errorf("insert journal entry: %w", err)
	}

	q := r.builder().
		Insert("journal_lines").
		Columns("id", "entry_id", "line_no", "account_id", "debit", "credit")
	for i, l := range j.Lines {
		q = q.Values(id.New(), entryID, i+1, accountIDs[l.AccountCode], l.Debit, l.Credit)
	}
	sql, args, err = q.ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return "", fmt.Errorf("insert journal lines: %w", err)
	}
	return entryID.String(), nil
}

func insertEntryQuery(b squirrel.StatementBuilderType, entryID id.ID, j Journal, actorID string) squirrel.InsertBuilder {
	return b.
		Insert("journal_entries").
		Columns("id", "company_id", "narration", "posting_date", "reference_type", "reference_id",
			"idempotency_key", "created_by", "created_at").
		Values(entryID, j.CompanyID, j.Narration, j.PostingDate, j.ReferenceType, j.ReferenceID,
			j.IdempotencyKey, actorID, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (idempotency_key) DO NOTHING RETURNING id")
}

func (r *JournalRepo) existingEntry(ctx context.Context, key string) (string, error) {
	var entryID id.ID
	err := r.txm.GetQuerier(ctx).
		QueryRow(ctx, "SELECT id FROM journal_entries WHERE idempotency_key = $1", key).
		Scan(&entryID)
	if err != nil {
		return "", fmt.Errorf("get journal entry %s: %w", key, err)
	}
	return entryID.String(), nil
}

type accountRow struct {
	ID   id.ID  `db:"id"`
	Code string `db:"code"`
}

// resolveAccounts maps every account code used by j to its id in the company's chart.
func (r *JournalRepo) resolveAccounts(ctx context.Context, j Journal) (map[string]id.ID, error) {
	codes := make([]string, 0, len(j.Lines))
	seen := make(map[string]bool, len(j.Lines))
	for _, l := range j.Lines {
		if !seen[l.AccountCode] {
			seen[l.AccountCode] = true
			codes = append(codes, l.AccountCode)
		}
	}

	sql, args, err := r.builder().
		Select("id", "code").
		From("accounts").
		Where(squirrel.Eq{"company_id": j.CompanyID, "code": codes}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []accountRow
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("resolve accounts: %w", err)
	}

	ids := make(map[string]id.ID, len(rows))
	for _, row := range rows {
		ids[row.Code] = row.ID
	}

	var missing []string
	for _, c := range codes {
		if _, ok := ids[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"account code(s) not found: "+strings.Join(missing, ", ")).
			WithDetail("companyId", j.CompanyID)
	}
	return ids, nil
}
