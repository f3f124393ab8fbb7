package fakeapi

import (
	"fmt"
	"time"

	"github.com/Sternrassler/employee-client/pkg/model"
)

var (
	firstNames  = []string{"Ada", "Alan", "Barbara", "Donald", "Edsger", "Frances", "Grace", "John", "Katherine", "Ken", "Linus", "Margaret"}
	lastNames   = []string{"Hopper", "Knuth", "Liskov", "Lovelace", "Hamilton", "Ritchie", "Thompson", "Turing", "Allen", "Dijkstra", "Johnson"}
	positions   = []string{"Engineer", "Senior Engineer", "Engineering Manager", "Designer", "Analyst", "Recruiter"}
	departments = []string{"R&D", "Platform", "Design", "Finance", "People"}
)

// Seed returns n deterministic sample employees without IDs.
func Seed(n int) []model.Employee {
	base := time.Date(2015, 1, 5, 0, 0, 0, 0, time.UTC)

	out := make([]model.Employee, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames)+i)%len(lastNames)]
		out = append(out, model.Employee{
			FullName:   fmt.Sprintf("%s %s %d", first, last, i+1),
			HireDate:   base.AddDate(0, i, (i*7)%28),
			Position:   positions[i%len(positions)],
			Salary:     float64(3000 + (i%9)*450),
			Department: departments[i%len(departments)],
		})
	}
	return out
}
