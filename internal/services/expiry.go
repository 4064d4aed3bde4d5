// expiry.go
//
// Content query, tagging and routing layer for the Tuskfish CMS data service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of tuskfish.
// tuskfish is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// tuskfish is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with tuskfish.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"time"

	"github.com/localnerve/tuskfish/internal/criteria"
	"github.com/localnerve/tuskfish/internal/database"
	"github.com/localnerve/tuskfish/internal/logging"
	"github.com/localnerve/tuskfish/internal/metrics"
)

// expiringTables carry an expiresOn (YYYY-MM-DD) column.
var expiringTables = []string{contentTable, expertTable}

// ExpireContent takes offline every online content and expert row whose expiresOn date is before
// the day of now. It returns the number of rows changed.
func ExpireContent(ctx context.Context, db *database.Database, now time.Time) (int64, error) {
	today := now.UTC().Format("2006-01-02")

	var total int64
	for _, table := range expiringTables {
		c := criteria.New()
		for _, cond := range []struct {
			column string
			value  any
			op     criteria.Operator
		}{
			{"onlineStatus", 1, criteria.OpEq},
			{"expiresOn", "", criteria.OpNe},
			{"expiresOn", today, criteria.OpLt},
		} {
			item, err := criteria.NewItem(cond.column, cond.value, cond.op)
			if err != nil {
				return total, err
			}
			c.Add(item)
		}

		n, err := db.UpdateAll(ctx, table, map[string]any{"onlineStatus": 0}, c)
		if err != nil {
			return total, err
		}
		if n > 0 {
			logging.Info().Str("table", table).Int64("expired", n).Str("before", today).Msg("Expired items taken offline")
		}
		total += n
	}

	metrics.RecordExpired(total)
	return total, nil
}
