package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Party is a provincial political party code.
type Party string

const (
	PartyCAQ Party = "CAQ"
	PartyPLQ Party = "PLQ"
	PartyPQ  Party = "PQ"
	PartyQS  Party = "QS"
	PartyPCQ Party = "PCQ"
	PartyPV  Party = "PV"
	PartyCQ  Party = "CQ"

	PartyUnknown Party = "unknown"
)

// ParseParty maps a party code to a Party, case-insensitively. Unlisted
// codes map to PartyUnknown.
func ParseParty(code string) Party {
	p := Party(strings.ToUpper(strings.TrimSpace(code)))
	if p.Known() {
		return p
	}
	return PartyUnknown
}

// Known reports whether p is one of the listed parties.
func (p Party) Known() bool {
	switch p {
	case PartyCAQ, PartyPLQ, PartyPQ, PartyQS, PartyPCQ, PartyPV, PartyCQ:
		return true
	}
	return false
}

// Candidate is a person running in a district.
type Candidate struct {
	Name     string `json:"name"`
	Party    Party  `json:"party"`
	District int    `json:"district"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
	Facebook string `json:"facebook,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
}

// CandidateDirectory indexes candidates by district, keeping load order.
type CandidateDirectory struct {
	all        []Candidate
	byDistrict map[int][]Candidate
}

// NewCandidateDirectory indexes candidates.
func NewCandidateDirectory(candidates []Candidate) *CandidateDirectory {
	d := &CandidateDirectory{
		all:        candidates,
		byDistrict: make(map[int][]Candidate),
	}
	for _, c := range candidates {
		d.byDistrict[c.District] = append(d.byDistrict[c.District], c)
	}
	return d
}

// ByDistrict returns the candidates of district. The province id returns
// every candidate. The result is never nil.
func (d *CandidateDirectory) ByDistrict(district int) []Candidate {
	if d == nil {
		return []Candidate{}
	}
	if district == ProvinceID {
		return append([]Candidate{}, d.all...)
	}
	return append([]Candidate{}, d.byDistrict[district]...)
}

// Len is the number of candidates.
func (d *CandidateDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.all)
}

// DecodeCandidates decodes the candidate list.
func DecodeCandidates(data []byte) ([]Candidate, error) {
	var candidates []Candidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w: %w", ErrMalformedDocument, err)
	}
	for i := range candidates {
		candidates[i].Party = ParseParty(string(candidates[i].Party))
	}
	return candidates, nil
}
