package http

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/DavidKimmel/DC-Traffic2/internal/domain"
)

// selectionFromQuery reads year, ward, injury, fatal, pedestrian and
// bicyclist. Missing parameters leave the field unconstrained.
func selectionFromQuery(q url.Values) (domain.Selection, error) {
	injury, err := domain.ParseInjurySeverity(q.Get("injury"))
	if err != nil {
		return domain.Selection{}, err
	}
	sel := domain.Selection{
		Year:   strings.TrimSpace(q.Get("year")),
		Ward:   strings.TrimSpace(q.Get("ward")),
		Injury: injury,
	}

	flags := []struct {
		name string
		dst  *bool
	}{
		{"fatal", &sel.FatalitiesOnly},
		{"pedestrian", &sel.PedestrianOnly},
		{"bicyclist", &sel.BicyclistOnly},
	}
	for _, f := range flags {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Selection{}, fmt.Errorf("invalid %s: %q", f.name, v)
		}
		*f.dst = b
	}
	return sel, nil
}
