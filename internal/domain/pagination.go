package domain

// Дефолтные размеры страниц выборок заказов.
const (
	DefaultListLimit         = 6
	DefaultListByStatusLimit = 15
)

// PageInfo описывает вычисленные параметры страницы выборки.
type PageInfo struct {
	Offset     int
	TotalPages int
	// NextPage/PrevPage равны nil на последней/первой странице соответственно.
	NextPage *int
	PrevPage *int
}

// Paginate вычисляет offset и метаданные страницы. Чистая функция:
// offset = max(0, page-1) * limit, totalPages = ceil(totalCount/limit).
func Paginate(page, limit, totalCount int) PageInfo {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	totalPages := 0
	if limit > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}

	info := PageInfo{Offset: offset, TotalPages: totalPages}
	if page < totalPages {
		next := page + 1
		info.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		info.PrevPage = &prev
	}
	return info
}

// NormalizePageParams подставляет дефолты вместо отсутствующих или
// некорректных значений page/limit.
func NormalizePageParams(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
