package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

const updateRepo = "Fepozopo/lunaratelier"

// semverRe finds a version such as v1.2.3 or 1.2.3-rc.1 inside a tag name.
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

// releaseFinder queries the GitHub releases API directly, which tolerates
// tag names selfupdate.DetectLatest would reject.
type releaseFinder struct {
	client  *http.Client
	apiBase string
	goos    string
	goarch  string
}

func newReleaseFinder() *releaseFinder {
	return &releaseFinder{
		client:  &http.Client{Timeout: 10 * time.Second},
		apiBase: "https://api.github.com",
		goos:    runtime.GOOS,
		goarch:  runtime.GOARCH,
	}
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// latest returns the highest published, non-prerelease version of repo.
// found is false when the repository has no usable release.
func (f *releaseFinder) latest(ctx context.Context, repo string) (rel *selfupdate.Release, found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/repos/%s/releases", f.apiBase, repo), nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, false, fmt.Errorf("failed to decode github releases: %w", err)
	}

	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			if match = semverRe.FindString(r.Name); match == "" {
				continue
			}
		}
		v, err := semver.ParseTolerant(match)
		if err != nil {
			continue
		}
		candidates = append(candidates, &selfupdate.Release{
			Version:  v,
			AssetURL: f.pickAsset(r),
			Name:     r.Name,
		})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], true, nil
}

// pickAsset prefers an asset built for this OS and architecture, then one
// for this OS, then the first asset.
func (f *releaseFinder) pickAsset(r githubRelease) string {
	best, bestScore := "", -1
	for _, a := range r.Assets {
		name := strings.ToLower(a.Name)
		score := 0
		if strings.Contains(name, f.goos) {
			score += 2
			if strings.Contains(name, f.goarch) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = a.BrowserDownloadURL, score
		}
	}
	return best
}

func (a *app) updateCommand() *cobra.Command {
	var (
		checkOnly bool
		yes       bool
	)
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update lunar to the latest GitHub release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, newReleaseFinder(), checkOnly, yes, func(assetURL string) error {
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("could not locate executable: %w", err)
				}
				return selfupdate.UpdateTo(assetURL, exe)
			})
		},
	}
	cmd.Flags().BoolVar(&checkOnly, "check", false, "only report whether an update is available")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "update without asking for confirmation")
	return cmd
}

func runUpdate(cmd *cobra.Command, f *releaseFinder, checkOnly, yes bool, apply func(assetURL string) error) error {
	w := out(cmd)
	fmt.Fprintf(w, "Current version: %s\n", Version)

	latest, found, err := f.latest(cmd.Context(), updateRepo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	if !found {
		fmt.Fprintf(w, "No releases found for %s.\n", updateRepo)
		return nil
	}
	fmt.Fprintf(w, "Latest version: %s\n", latest.Version)

	current, err := semver.ParseTolerant(Version)
	if err != nil {
		fmt.Fprintf(w, "warning: could not parse current version %q: %v\n", Version, err)
	} else if latest.Version.LTE(current) {
		fmt.Fprintf(w, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if checkOnly {
		fmt.Fprintf(w, "A new version (%s) is available. Run 'lunar update' to install it.\n", latest.Version)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(w, "A new version (%s) is available but there is no downloadable asset.\n", latest.Version)
		return nil
	}
	if !yes {
		fmt.Fprintf(w, "A new version (%s) is available. Update now? (y/N): ", latest.Version)
		answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed reading input: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(w, "Update cancelled.")
			return nil
		}
	}
	fmt.Fprintln(w, "Updating...")
	if err := apply(latest.AssetURL); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(w, "Updated to version %s. Restart lunar to use it.\n", latest.Version)
	return nil
}
