package export

import (
	"io"
	"strconv"
	"strings"

	"github.com/vaultview/vaultview/pkg/portfolio"
)

// column order is fixed and part of the exported format
var csvHeaders = []string{
	"Organization",
	"Email",
	"Status",
	"Role",
	"Health Score",
	"Weak Passwords",
	"Reused Passwords",
	"Compromised Passwords",
	"2FA Type",
}

// WriteCSV writes one row per member of every successfully loaded tenant.
// The header line is plain; every data field is double-quoted. The role
// column records the first truthy role flag name, or "User".
func WriteCSV(w io.Writer, records []portfolio.TenantRecord) error {
	lines := []string{strings.Join(csvHeaders, ",")}

	for _, tenant := range portfolio.Loaded(records) {
		for _, member := range tenant.Data.Users.Members {
			row := []string{
				tenant.Name,
				member.Email,
				member.Status,
				portfolio.ResolveRole(member.Role).FlagName(),
				strconv.FormatFloat(member.PasswordHealth.Score, 'f', -1, 64),
				strconv.Itoa(member.PasswordHealth.WeakPasswords),
				strconv.Itoa(member.PasswordHealth.ReusedPasswords),
				strconv.Itoa(member.PasswordHealth.CompromisedPasswords),
				member.Authentication.Type,
			}
			lines = append(lines, quoteRow(row))
		}
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n"))
	return err
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
