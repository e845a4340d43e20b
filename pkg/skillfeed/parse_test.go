package skillfeed_test

import (
	"testing"

	"techgallery-backend/pkg/skillfeed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"[Java]":            "java",
		"Go":                "go",
		"Google App Engine": "google_app_engine",
		"Ação":              "acao",
		"Node.js":           "nodejs",
		"C++":               "c",
		"ci-cd":             "ci-cd",
	}
	for in, want := range cases {
		assert.Equal(t, want, skillfeed.Slugify(in), "Slugify(%q)", in)
	}
}

func TestParseEntries(t *testing.T) {
	t.Run("Should parse pairs packed in one entry", func(t *testing.T) {
		got, err := skillfeed.ParseEntries("[Java];4;[Go];2")
		require.NoError(t, err)
		assert.Equal(t, []skillfeed.Rating{
			{TechnologyID: "java", Name: "Java", Value: 4},
			{TechnologyID: "go", Name: "Go", Value: 2},
		}, got)
	})

	t.Run("Should parse one pair per entry with surrounding text", func(t *testing.T) {
		got, err := skillfeed.ParseEntries("Languages - [Google App Engine] (cloud);5", " [Angular JS] ; 0 ")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "google_app_engine", got[0].TechnologyID)
		assert.Equal(t, 5, got[0].Value)
		assert.Equal(t, "angular_js", got[1].TechnologyID)
		assert.Equal(t, 0, got[1].Value)
	})

	t.Run("Should ignore a trailing separator", func(t *testing.T) {
		got, err := skillfeed.ParseEntries("[Java];4;")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("Should return nothing for an empty list", func(t *testing.T) {
		got, err := skillfeed.ParseEntries()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("Should not range check ratings", func(t *testing.T) {
		got, err := skillfeed.ParseEntries("[Java];9")
		require.NoError(t, err)
		assert.Equal(t, 9, got[0].Value)
	})

	malformed := map[string]string{
		"missing rating":     "[Java];4;[Go]",
		"no brackets":        "Java;4",
		"unclosed bracket":   "[Java;4",
		"empty name":         "[ ];4",
		"symbols only":       "[++];4",
		"non integer rating": "[Java];four",
	}
	for name, entry := range malformed {
		entry := entry
		t.Run("Should reject "+name, func(t *testing.T) {
			_, err := skillfeed.ParseEntries(entry)
			require.Error(t, err)
			assert.ErrorIs(t, err, skillfeed.ErrMalformedEntry)
		})
	}
}

func TestLoginFromEmail(t *testing.T) {
	login, err := skillfeed.LoginFromEmail("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user", login)

	login, err = skillfeed.LoginFromEmail("plainlogin")
	require.NoError(t, err)
	assert.Equal(t, "plainlogin", login)

	_, err = skillfeed.LoginFromEmail("@example.com")
	assert.ErrorIs(t, err, skillfeed.ErrMalformedEntry)

	_, err = skillfeed.LoginFromEmail("  ")
	assert.ErrorIs(t, err, skillfeed.ErrMalformedEntry)
}
