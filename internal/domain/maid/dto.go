package maid

import "maidmarket/internal/pkg/utils"

// CreateMaidRequest is the body of POST /maids.
type CreateMaidRequest struct {
	Name            string   `json:"name" binding:"required"`
	Nationality     string   `json:"nationality" binding:"required"`
	Age             int      `json:"age" binding:"required"`
	ExperienceYears int      `json:"experience_years"`
	Religion        string   `json:"religion"`
	Languages       []string `json:"languages"`
	Skills          []string `json:"skills"`
	MonthlySalary   int64    `json:"monthly_salary"`
	PhotoURL        string   `json:"photo_url"`
	Phone           string   `json:"phone"`
	PassportNumber  string   `json:"passport_number"`
	CVURL           string   `json:"cv_url"`
}

func (r CreateMaidRequest) toMaid() *Maid {
	return &Maid{
		Name:            r.Name,
		Nationality:     r.Nationality,
		Age:             r.Age,
		ExperienceYears: r.ExperienceYears,
		Religion:        r.Religion,
		Languages:       r.Languages,
		Skills:          r.Skills,
		MonthlySalary:   r.MonthlySalary,
		Available:       true,
		PhotoURL:        r.PhotoURL,
		Phone:           r.Phone,
		PassportNumber:  r.PassportNumber,
		CVURL:           r.CVURL,
	}
}

// ListResponse is a page of maids.
type ListResponse struct {
	Maids      []Maid `json:"maids"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PerPage    int    `json:"per_page"`
	TotalPages int    `json:"total_pages"`
}

// DetailResponse carries the CV only once it is unlocked.
type DetailResponse struct {
	Maid     *Maid `json:"maid"`
	Unlocked bool  `json:"unlocked"`
	CV       *CV   `json:"cv,omitempty"`
}

func toListResponse(maids []Maid, total int64, page, perPage int) ListResponse {
	if maids == nil {
		maids = []Maid{}
	}

	return ListResponse{
		Maids:      maids,
		Total:      total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: utils.TotalPages(total, perPage),
	}
}
