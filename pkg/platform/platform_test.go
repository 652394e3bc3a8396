package platform

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_err"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/plugin_io"
	"github.com/CodeMonkeyCybersecurity/telegraf-plugin/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id      string
		want    Family
		wantErr bool
	}{
		{"ubuntu", FamilyDebian, false},
		{"debian", FamilyDebian, false},
		{"centos", FamilyRedHat, false},
		{"redhat", FamilyRedHat, false},
		{"fedora", "", true},
		{"alpine", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			got, err := ResolveFamily(tt.id)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, plugin_err.IsNonRecoverable(err))
				assert.ErrorIs(t, err, plugin_err.ErrUnsupportedPlatform)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequireLinux(t *testing.T) {
	t.Parallel()

	assert.NoError(t, requireLinux("linux"))
	for _, goos := range []string{"darwin", "windows", "freebsd"} {
		err := requireLinux(goos)
		require.Error(t, err, goos)
		assert.True(t, plugin_err.IsNonRecoverable(err))
	}
}

func TestResolverFamilyFromOSRelease(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rc := plugin_io.NewTestContext(t, plugin_io.Deployment{})

	r := &Resolver{OSReleasePath: testutil.OSRelease(t, dir, "ubuntu"), GOOS: "linux", GOARCH: "amd64"}
	family, err := r.Family(rc)
	require.NoError(t, err)
	assert.Equal(t, FamilyDebian, family)

	quoted := testutil.CreateTestFile(t, dir, "centos-release", "ID=\"centos\"\nID_LIKE=\"rhel fedora\"\n", 0644)
	r.OSReleasePath = quoted
	family, err = r.Family(rc)
	require.NoError(t, err)
	assert.Equal(t, FamilyRedHat, family)

	r.OSReleasePath = testutil.OSRelease(t, t.TempDir(), "arch")
	_, err = r.Family(rc)
	assert.True(t, plugin_err.IsNonRecoverable(err))
}

func TestResolverFamilyNonLinux(t *testing.T) {
	t.Parallel()

	rc := plugin_io.NewTestContext(t, plugin_io.Deployment{})
	r := &Resolver{OSReleasePath: "/does/not/matter", GOOS: "darwin"}
	_, err := r.Family(rc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only on linux")
}

func TestResolverMissingOSRelease(t *testing.T) {
	t.Parallel()

	rc := plugin_io.NewTestContext(t, plugin_io.Deployment{})
	r := &Resolver{OSReleasePath: "/nonexistent/os-release", GOOS: "linux"}
	_, err := r.Family(rc)
	require.Error(t, err)
	assert.True(t, plugin_err.IsNonRecoverable(err))
}

func TestParseOSReleaseData(t *testing.T) {
	t.Parallel()

	info := parseOSReleaseData(`# comment
NAME="Ubuntu"
VERSION_ID="22.04"
ID=Ubuntu
ID_LIKE=debian
PRETTY_NAME='Ubuntu 22.04.3 LTS'
garbage line
`)
	assert.Equal(t, "ubuntu", info.ID)
	assert.Equal(t, "debian", info.IDLike)
	assert.Equal(t, "22.04", info.VersionID)
	assert.Equal(t, "Ubuntu 22.04.3 LTS", info.PrettyName)
}

func TestReleaseArtifact(t *testing.T) {
	t.Parallel()

	tests := []struct {
		family  Family
		version string
		arch    string
		want    string
	}{
		{FamilyDebian, "1.4.0", "amd64", "telegraf_1.4.0-1_amd64.deb"},
		{FamilyRedHat, "1.4.0", "amd64", "telegraf-1.4.0-1.x86_64.rpm"},
		{FamilyDebian, "v1.29.5", "arm64", "telegraf_1.29.5-1_arm64.deb"},
		{FamilyRedHat, "1.29", "arm64", "telegraf-1.29.0-1.aarch64.rpm"},
	}
	for _, tt := range tests {
		got, err := ReleaseArtifact(tt.family, tt.version, tt.arch)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ReleaseArtifact(FamilyDebian, "not-a-version", "amd64")
	assert.Equal(t, plugin_err.ExitUserError, plugin_err.GetExitCode(err))

	_, err = ReleaseArtifact(FamilyRedHat, "1.4.0", "mips")
	assert.True(t, plugin_err.IsNonRecoverable(err))
}

func TestDownloadURL(t *testing.T) {
	t.Parallel()

	got, err := DownloadURL("", "telegraf_1.4.0-1_amd64.deb")
	require.NoError(t, err)
	assert.Equal(t, "https://dl.influxdata.com/telegraf/releases/telegraf_1.4.0-1_amd64.deb", got)

	got, err = DownloadURL("https://mirror.example.com/telegraf", "telegraf-1.4.0-1.x86_64.rpm")
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/telegraf/telegraf-1.4.0-1.x86_64.rpm", got)

	r := &Resolver{GOARCH: "amd64"}
	got, err = r.DefaultDownloadURL(FamilyRedHat, "", "1.4.0")
	require.NoError(t, err)
	assert.Equal(t, "https://dl.influxdata.com/telegraf/releases/telegraf-1.4.0-1.x86_64.rpm", got)
}
