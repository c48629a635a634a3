package common

import (
	"crypto/sha256"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
	NA       = "N/A"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a snowflake int64 id, used as primary key for all
// runtime-created rows.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		rand.Seed(time.Now().UnixNano())
		node, err := snowflake.NewNode(rand.Int63n(1023))
		if err != nil {
			panic(err)
		}
		snowflakeNode = node
	})
	return snowflakeNode.Generate().Int64()
}

// UUID returns the base36 string form of a snowflake id.
func UUID() string {
	UUIDint64()
	return strings.ToLower(snowflakeNode.Generate().Base36())
}

// GetSecretSalt reads the operator password salt from the environment,
// falling back to a fixed development salt.
func GetSecretSalt() string {
	salt := os.Getenv("ABLEWEAR_SECRET_SALT")
	if salt == "" {
		salt = "ablewear-dev-salt"
	}
	return salt
}

// Sha256HashWithSalt hashes operator passwords. Customer passwords use
// bcrypt, see internal/shopapi.
func Sha256HashWithSalt(src string, salt string) string {
	h := sha256.New()
	h.Write([]byte(src + salt))
	return fmt.Sprintf("%x", h.Sum(nil))
}

var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FmtRupee renders an amount the way the storefront displays prices,
// with Indian digit grouping.
func FmtRupee(amount float64) string {
	return inrPrinter.Sprintf("₹%v", number.Decimal(amount, number.MaxFractionDigits(2)))
}
