package helper

import (
	"bus_booking/model"
	"fmt"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func GenerateUniqueRouteSlug(tx *gorm.DB, origin, destination string) string {
	base := slug.Make(origin + " " + destination)
	result := base
	i := 1

	for {
		var count int64
		tx.Model(&model.Route{}).
			Where("slug = ?", result).
			Count(&count)

		if count == 0 {
			break
		}
		result = fmt.Sprintf("%s-%d", base, i)
		i++
	}

	return result
}
