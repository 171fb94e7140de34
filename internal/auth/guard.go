package auth

import (
	"database/sql"

	"mediabank/internal/constants"
	"mediabank/internal/database"
	"mediabank/internal/logger"
)

// Guard evaluates whether an authenticated identity may perform an
// operation. School-level checks always consult the accounts table so a
// ban takes effect immediately, regardless of outstanding tokens.
type Guard struct {
	db     *sql.DB
	logger *logger.Logger
}

func NewGuard(db *sql.DB, log *logger.Logger) *Guard {
	return &Guard{db: db, logger: log}
}

// Authorize evaluates claims against an operation.
func (g *Guard) Authorize(claims *Claims, op Operation) *Decision {
	if claims == nil {
		return deny(DenyUnauthenticated, "authentication required")
	}

	if adminOnlyOps[op] {
		if claims.Role != constants.RoleAdmin {
			return deny(DenyForbidden, "admin access required")
		}
		return allow()
	}

	// The admin singleton has no account row and is never ban-checked.
	if claims.Role == constants.RoleAdmin {
		return allow()
	}

	account, err := database.GetAccountByID(g.db, claims.AccountID)
	if err != nil {
		// An unreachable credential store is a server fault, not a denial.
		g.logger.Error("Guard: account lookup failed for id %d: %v", claims.AccountID, err)
		return deny(DenyStorageFailure, "internal storage error")
	}
	if account == nil {
		// Stale token for an account that no longer exists.
		return deny(DenyUnauthenticated, "account not found")
	}
	if account.Banned {
		g.logger.Warn("Guard: banned account %s (id %d) attempted %s", account.Username, account.ID, op)
		return deny(DenyBanned, "account is banned")
	}

	return allow()
}
