package favorite

import (
	"time"

	"maidmarket/internal/pkg/utils"
)

// FavoriteResponse is one favorite with a short maid card.
type FavoriteResponse struct {
	ID        int64      `json:"id"`
	MaidID    string     `json:"maid_id"`
	Maid      *MaidBrief `json:"maid,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// MaidBrief is the maid card shown in the favorites list.
type MaidBrief struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
	Age           int    `json:"age"`
	MonthlySalary int64  `json:"monthly_salary"`
	Available     bool   `json:"available"`
	PhotoURL      string `json:"photo_url,omitempty"`
}

type ListResponse struct {
	Favorites  []FavoriteResponse `json:"favorites"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PerPage    int                `json:"per_page"`
	TotalPages int                `json:"total_pages"`
}

type IDsResponse struct {
	IDs []string `json:"ids"`
}

type CheckResponse struct {
	IsFavorite bool `json:"is_favorite"`
}

func ToFavoriteResponse(f *Favorite) FavoriteResponse {
	resp := FavoriteResponse{
		ID:        f.ID,
		MaidID:    f.MaidID,
		CreatedAt: f.CreatedAt,
	}

	if f.Maid != nil {
		resp.Maid = &MaidBrief{
			ID:            f.Maid.ID,
			Name:          f.Maid.Name,
			Nationality:   f.Maid.Nationality,
			Age:           f.Maid.Age,
			MonthlySalary: f.Maid.MonthlySalary,
			Available:     f.Maid.Available,
			PhotoURL:      f.Maid.PhotoURL,
		}
	}

	return resp
}

func ToListResponse(favorites []Favorite, total int64, page, perPage int) ListResponse {
	items := make([]FavoriteResponse, len(favorites))
	for i := range favorites {
		items[i] = ToFavoriteResponse(&favorites[i])
	}

	return ListResponse{
		Favorites:  items,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: utils.TotalPages(total, perPage),
	}
}
