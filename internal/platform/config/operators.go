package config

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// compareHash is swapped in tests to observe which paths run a comparison.
var compareHash = bcrypt.CompareHashAndPassword

// Identity is the set of identity fields provisioned for an operator.
type Identity struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	SecondName string `json:"second_name"`
	BirthDay   string `json:"b_day"`
	Series     string `json:"series"`
	Number     string `json:"number"`
	Timezone   string `json:"timezone,omitempty"`
}

// Operator is a provisioned issuer. Only the bcrypt hash of the password is
// retained after loading.
type Operator struct {
	Username     string
	passwordHash []byte
	Identity     Identity
}

// NewOperator hashes password with the given bcrypt cost.
func NewOperator(username, password string, identity Identity, cost int) (Operator, error) {
	if username == "" {
		return Operator{}, fmt.Errorf("operator username is required")
	}
	if password == "" {
		return Operator{}, fmt.Errorf("operator %q: password is required", username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return Operator{}, fmt.Errorf("operator %q: hash password: %w", username, err)
	}
	return Operator{Username: username, passwordHash: hash, Identity: identity}, nil
}

// CheckPassword reports whether password matches the provisioned one.
func (o Operator) CheckPassword(password string) bool {
	if len(o.passwordHash) == 0 {
		return false
	}
	return compareHash(o.passwordHash, []byte(password)) == nil
}

// Operators is an immutable username → operator table.
type Operators struct {
	byName map[string]Operator
	// decoy is compared for unknown usernames so both paths cost one bcrypt run.
	decoy []byte
}

// NewOperators builds the table; duplicate usernames are rejected.
func NewOperators(ops ...Operator) (Operators, error) {
	byName := make(map[string]Operator, len(ops))
	cost := bcrypt.MinCost
	for _, op := range ops {
		if _, dup := byName[op.Username]; dup {
			return Operators{}, fmt.Errorf("duplicate operator %q", op.Username)
		}
		byName[op.Username] = op
		if c, err := bcrypt.Cost(op.passwordHash); err == nil && c > cost {
			cost = c
		}
	}
	decoy, err := bcrypt.GenerateFromPassword([]byte("unknown operator"), cost)
	if err != nil {
		return Operators{}, fmt.Errorf("hash decoy password: %w", err)
	}
	return Operators{byName: byName, decoy: decoy}, nil
}

// Lookup returns the operator with the given username.
func (o Operators) Lookup(username string) (Operator, bool) {
	op, ok := o.byName[username]
	return op, ok
}

// Len returns the number of provisioned operators.
func (o Operators) Len() int {
	return len(o.byName)
}

// Authenticate returns the operator when the credentials match.
func (o Operators) Authenticate(username, password string) (Operator, bool) {
	op, ok := o.Lookup(username)
	if !ok {
		if len(o.decoy) > 0 {
			_ = compareHash(o.decoy, []byte(password))
		}
		return Operator{}, false
	}
	if !op.CheckPassword(password) {
		return Operator{}, false
	}
	return op, true
}

// OperatorsFromEnv reads ADMIN_USERS and USER_{i}_* variables through getenv.
// A missing or zero ADMIN_USERS yields an empty table.
func OperatorsFromEnv(getenv func(string) string) (Operators, error) {
	return operatorsFromEnv(getenv, bcrypt.DefaultCost)
}

func operatorsFromEnv(getenv func(string) string, cost int) (Operators, error) {
	raw := strings.TrimSpace(getenv("ADMIN_USERS"))
	if raw == "" {
		return NewOperators()
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		return Operators{}, fmt.Errorf("ADMIN_USERS must be a non-negative integer")
	}

	ops := make([]Operator, 0, count)
	for i := range count {
		v := func(field string) string {
			return strings.TrimSpace(getenv(fmt.Sprintf("USER_%d_%s", i, field)))
		}
		op, err := NewOperator(v("USERNAME"), v("PASSWORD"), Identity{
			FirstName:  v("FIRST_NAME"),
			LastName:   v("LAST_NAME"),
			SecondName: v("SECOND_NAME"),
			BirthDay:   v("B_DAY"),
			Series:     v("SERIES"),
			Number:     v("NUMBER"),
			Timezone:   v("TIMEZONE"),
		}, cost)
		if err != nil {
			return Operators{}, fmt.Errorf("USER_%d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return NewOperators(ops...)
}
