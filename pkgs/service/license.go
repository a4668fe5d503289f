package service

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultLicenseTimeout = 10 * time.Second
	githubRepoPrefix      = "https://github.com/"
	defaultRawContentBase = "https://raw.githubusercontent.com"
	licensePhrase         = "MIT License"
)

// Branches probed for a LICENSE file when the actual default branch is
// unknown. Order matters: first hit wins.
var licenseBranches = []string{"main", "master"}

// LicenseVerifier checks whether a GitHub repository carries an MIT
// license on one of the conventional default branches.
type LicenseVerifier struct {
	client  *http.Client
	rawBase string
}

func NewLicenseVerifier(timeout time.Duration) *LicenseVerifier {
	if timeout <= 0 {
		timeout = DefaultLicenseTimeout
	}
	return &LicenseVerifier{
		client:  &http.Client{Timeout: timeout},
		rawBase: defaultRawContentBase,
	}
}

// Check fetches <rawBase>/<owner>/<repo>/<branch>/LICENSE for each
// candidate branch and passes on the first body containing the MIT
// phrase. A transport error on any probe fails the whole check without
// trying the next branch; that short-circuit is part of the contract.
func (v *LicenseVerifier) Check(repoURL string) (bool, string) {
	if strings.HasPrefix(repoURL, githubRepoPrefix) {
		parts := strings.Split(strings.Trim(strings.TrimPrefix(repoURL, githubRepoPrefix), "/"), "/")
		if len(parts) >= 2 {
			owner, repo := parts[0], parts[1]
			for _, branch := range licenseBranches {
				raw := fmt.Sprintf("%s/%s/%s/%s/LICENSE", v.rawBase, owner, repo, branch)
				resp, err := v.client.Get(raw)
				if err != nil {
					return false, fmt.Sprintf("Error fetching LICENSE: %v", err)
				}
				body, _ := io.ReadAll(resp.Body)
				resp.Body.Close()
				if resp.StatusCode < 400 && strings.Contains(string(body), licensePhrase) {
					return true, fmt.Sprintf("MIT found on %s", branch)
				}
			}
			return false, "No MIT found on main/master"
		}
	}
	return false, "Not a github repo"
}
