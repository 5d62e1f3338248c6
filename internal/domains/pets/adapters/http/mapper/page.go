package mapper

import (
	"net/url"
	"strconv"

	"github.com/Apurer/go-gin-pets-api/internal/domains/pets/domain"
	"github.com/Apurer/go-gin-pets-api/internal/shared/pagination"
)

// PetPage is the paginated list envelope.
type PetPage struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Pet   `json:"results"`
}

// FromPetPage builds the envelope. Links reuse the request URL with the page parameter replaced;
// the link to page 1 drops the parameter.
func FromPetPage(page pagination.Page[*domain.Pet], requestURL *url.URL) PetPage {
	envelope := PetPage{
		Count:   page.Total,
		Results: FromDomainPetList(page.Items),
	}
	if page.HasNext() {
		envelope.Next = pageLink(requestURL, page.Number+1)
	}
	if page.HasPrevious() {
		envelope.Previous = pageLink(requestURL, page.Number-1)
	}
	return envelope
}

func pageLink(requestURL *url.URL, number int) *string {
	link := *requestURL
	query := link.Query()
	if number <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(number))
	}
	link.RawQuery = query.Encode()
	value := link.String()
	return &value
}
