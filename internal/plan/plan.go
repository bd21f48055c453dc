// Copyright 2026 The Tourbase Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package plan

// Subscription plan names. Plans are static configuration loaded once
// per process, not persisted rows.
const (
	Free       = "free"
	Basic      = "basic"
	Pro        = "pro"
	Enterprise = "enterprise"
)

// Unlimited is the sentinel limit meaning "no cap". Checks against an
// unlimited resource skip the usage count entirely.
const Unlimited = -1

// Resource is a quota-bounded resource kind.
type Resource string

const (
	ResourceTours    Resource = "tours"
	ResourceBookings Resource = "bookings"
	ResourceStaff    Resource = "staff"
)

// Limits bounds the resource counts a plan permits.
type Limits struct {
	Tours    int
	Bookings int
	Staff    int
	Storage  string
}

// For returns the limit for a resource kind. Unknown kinds are treated
// as unlimited; the enforcer validates kinds before reaching here.
func (l Limits) For(r Resource) int {
	switch r {
	case ResourceTours:
		return l.Tours
	case ResourceBookings:
		return l.Bookings
	case ResourceStaff:
		return l.Staff
	}
	return Unlimited
}

// table is the flat plan configuration. Adding a plan means adding one
// row here and nothing else.
var table = map[string]Limits{
	Free:       {Tours: 3, Bookings: 50, Staff: 2, Storage: "500MB"},
	Basic:      {Tours: 25, Bookings: 1000, Staff: 10, Storage: "5GB"},
	Pro:        {Tours: Unlimited, Bookings: Unlimited, Staff: 50, Storage: "50GB"},
	Enterprise: {Tours: Unlimited, Bookings: Unlimited, Staff: Unlimited, Storage: "1TB"},
}

// Valid reports whether name is a known plan.
func Valid(name string) bool {
	_, ok := table[name]
	return ok
}

// LimitsFor returns the configured limits for a plan. Unknown plans get
// the free tier, the most restrictive row.
func LimitsFor(name string) Limits {
	if l, ok := table[name]; ok {
		return l
	}
	return table[Free]
}

// Names returns the known plan names.
func Names() []string {
	return []string{Free, Basic, Pro, Enterprise}
}
