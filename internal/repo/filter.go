package repo

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/noah-isme/backend-tour/internal/domain"
)

// orderFilter translates a typed order query into a Mongo filter.
func orderFilter(f domain.OrderFilter) bson.M {
	filter := bson.M{}
	if f.Status != nil {
		filter["status"] = string(*f.Status)
	}
	if f.UserID != "" {
		filter["userId"] = f.UserID
	}
	if f.From != nil || f.To != nil {
		created := bson.M{}
		if f.From != nil {
			created["$gte"] = *f.From
		}
		if f.To != nil {
			created["$lt"] = *f.To
		}
		filter["createdAt"] = created
	}
	if or := textMatch(f.Text, "orderCode", "fullName", "email", "phone"); or != nil {
		filter["$or"] = or
	}
	return filter
}

// liveFilter matches non-deleted documents whose fields contain text.
func liveFilter(text string, fields ...string) bson.M {
	filter := bson.M{"deleted": bson.M{"$ne": true}}
	if or := textMatch(text, fields...); or != nil {
		filter["$or"] = or
	}
	return filter
}

func textMatch(text string, fields ...string) bson.A {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	pattern := regexp.QuoteMeta(text)
	or := make(bson.A, 0, len(fields))
	for _, field := range fields {
		or = append(or, bson.M{field: bson.M{"$regex": pattern, "$options": "i"}})
	}
	return or
}
