package course

import (
	"bufio"
	"io"
	"strings"

	"github.com/trezcool/courseware/core/user"
)

// writeRoster writes one `id,"name",email` line per student, without a header row.
func writeRoster(w io.Writer, students []user.User) error {
	bw := bufio.NewWriter(w)
	for _, s := range students {
		bw.WriteString(s.ID)
		bw.WriteString(`,"`)
		bw.WriteString(strings.ReplaceAll(s.Name, `"`, `""`))
		bw.WriteString(`",`)
		bw.WriteString(s.Email)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
