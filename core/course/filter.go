package course

import (
	"net/url"
	"strconv"
)

func (qf QueryFilter) values() url.Values {
	v := make(url.Values)
	if qf.Subject != "" {
		v.Set("subject", qf.Subject)
	}
	if qf.Number > 0 {
		v.Set("number", strconv.Itoa(qf.Number))
	}
	if qf.Term != "" {
		v.Set("term", qf.Term)
	}
	return v
}
