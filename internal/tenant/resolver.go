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

package tenant

import (
	"context"
	"net"
	"strings"
)

// RequestMeta is the slice of an inbound request the resolver inspects.
// HeaderHint and QueryHint are only honored on development hosts.
type RequestMeta struct {
	Host       string
	HeaderHint string
	QueryHint  string
}

// Resolver derives the active workspace from request metadata. Resolution
// is read-only: one repository lookup, no mutation.
//
// Precedence is an ordered strategy chain, first claim wins:
//  1. development host → explicit hint (header, then query) by slug
//  2. {slug}.platform-domain subdomain (three or more labels) by slug
//  3. anything else → custom domain lookup by full hostname
type Resolver struct {
	repo           Repository
	platformDomain string
	devHosts       map[string]struct{}
}

// NewResolver creates a resolver bound to the platform apex domain.
func NewResolver(repo Repository, platformDomain string, devHosts []string) *Resolver {
	hosts := make(map[string]struct{}, len(devHosts))
	for _, h := range devHosts {
		hosts[strings.ToLower(h)] = struct{}{}
	}
	return &Resolver{
		repo:           repo,
		platformDomain: strings.ToLower(platformDomain),
		devHosts:       hosts,
	}
}

// strategy attempts to resolve a tenant from request metadata. claimed
// reports whether this strategy owns the request; once a strategy claims
// it, later strategies never run, whatever the lookup outcome.
type strategy func(ctx context.Context, meta RequestMeta) (t *Tenant, claimed bool, err error)

// Resolve returns the workspace the request belongs to.
// Fails with ErrNoTenantHint on development hosts without an explicit
// hint, and ErrTenantNotFound when a claimed lookup misses.
func (r *Resolver) Resolve(ctx context.Context, meta RequestMeta) (*Tenant, error) {
	meta.Host = normalizeHost(meta.Host)

	for _, s := range []strategy{r.devHint, r.subdomain, r.customDomain} {
		t, claimed, err := s(ctx, meta)
		if !claimed {
			continue
		}
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	// customDomain claims every host, so this is unreachable; kept for
	// the compiler.
	return nil, ErrTenantNotFound
}

// devHint claims loopback and configured development hosts. The hint
// order (header before query) is the wire contract the edge layer
// relies on.
func (r *Resolver) devHint(ctx context.Context, meta RequestMeta) (*Tenant, bool, error) {
	if !r.isDevHost(meta.Host) {
		return nil, false, nil
	}

	slug := meta.HeaderHint
	if slug == "" {
		slug = meta.QueryHint
	}
	if slug == "" {
		return nil, true, ErrNoTenantHint
	}

	t, err := r.repo.GetBySlug(ctx, strings.ToLower(slug))
	if err != nil {
		return nil, true, err
	}
	return t, true, nil
}

// subdomain claims hosts of the form {slug}.platformdomain with at least
// three dot-separated labels. A miss is terminal: it never falls through
// to the custom-domain branch.
func (r *Resolver) subdomain(ctx context.Context, meta RequestMeta) (*Tenant, bool, error) {
	suffix := "." + r.platformDomain
	if !strings.HasSuffix(meta.Host, suffix) {
		return nil, false, nil
	}
	if strings.Count(meta.Host, ".") < 2 {
		return nil, false, nil
	}

	slug := meta.Host[:strings.Index(meta.Host, ".")]
	if slug == "" {
		return nil, true, ErrTenantNotFound
	}

	t, err := r.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, true, err
	}
	return t, true, nil
}

// customDomain claims everything the earlier strategies left, treating
// the full hostname as a registered custom domain. Malformed hostnames
// land here and simply miss the lookup.
func (r *Resolver) customDomain(ctx context.Context, meta RequestMeta) (*Tenant, bool, error) {
	t, err := r.repo.GetByDomain(ctx, meta.Host)
	if err != nil {
		return nil, true, err
	}
	return t, true, nil
}

func (r *Resolver) isDevHost(host string) bool {
	_, ok := r.devHosts[host]
	return ok
}

// normalizeHost lowercases and strips any port from a Host header value.
func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
