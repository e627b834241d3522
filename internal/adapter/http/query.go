package http

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
)

// parseSelection reads year (required), district (default: province) and
// types (comma separated codes, default: all).
func parseSelection(q url.Values) (domain.UserSelection, error) {
	var sel domain.UserSelection

	raw := q.Get("year")
	if raw == "" {
		return sel, errors.New("year is required")
	}
	year, err := parseInt(raw, "year")
	if err != nil {
		return sel, err
	}
	sel.Year = year

	district, err := parseDistrict(q)
	if err != nil {
		return sel, err
	}
	sel.District = district

	types, err := domain.ParseTypeFilter(q.Get("types"))
	if err != nil {
		return sel, err
	}
	sel.Types = types
	return sel, nil
}

// parseSeries reads district (default: province) and stat (default:
// temp_increase).
func parseSeries(q url.Values) (int, domain.Statistic, error) {
	district, err := parseDistrict(q)
	if err != nil {
		return 0, "", err
	}
	raw := q.Get("stat")
	if raw == "" {
		return district, domain.StatTempIncrease, nil
	}
	stat, err := domain.ParseStatistic(raw)
	if err != nil {
		return 0, "", err
	}
	return district, stat, nil
}

func parseDistrict(q url.Values) (int, error) {
	raw := q.Get("district")
	if raw == "" {
		return domain.ProvinceID, nil
	}
	district, err := parseInt(raw, "district")
	if err != nil {
		return 0, err
	}
	if district < 0 {
		return 0, errors.New("district must not be negative")
	}
	return district, nil
}

func parseInt(raw, name string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
