package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTranslations(t *testing.T) {
	t.Run("Should load the bundled catalogs", func(t *testing.T) {
		trans, err := NewTranslations("en")

		require.NoError(t, err)
		assert.Equal(t, "Scan summary", trans.GetMessage("run.summary_title", 0, nil))
	})

	t.Run("Should fail with empty language", func(t *testing.T) {
		trans, err := NewTranslations("")

		assert.Error(t, err)
		assert.Nil(t, trans)
	})

	t.Run("Should ship every English message in Spanish too", func(t *testing.T) {
		en, err := NewTranslations("en")
		require.NoError(t, err)
		es, err := NewTranslations("es")
		require.NoError(t, err)

		assert.NotEqual(t,
			en.GetMessage("run.summary_title", 0, nil),
			es.GetMessage("run.summary_title", 0, nil))
		assert.NotContains(t, es.GetMessage("summary.commits", 2, map[string]interface{}{"Count": 2}), "Translation missing")
	})
}

func TestSetLanguage(t *testing.T) {
	trans, err := NewTranslations("en")
	require.NoError(t, err)

	t.Run("Should change to a valid language", func(t *testing.T) {
		require.NoError(t, trans.SetLanguage("es"))
		assert.Equal(t, "Resumen del escaneo", trans.GetMessage("run.summary_title", 0, nil))
	})

	t.Run("Should fail with unsupported language", func(t *testing.T) {
		assert.Error(t, trans.SetLanguage("fr"))
	})
}

func TestGetMessage(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/active.es.toml": {Data: []byte(`
[welcome]
one = "Bienvenido"
other = "Bienvenidos"

[hello_name]
other = "¡Hola {{.Name}}!"
`)},
	}

	trans, err := newTranslationsFS("es", fsys, "locales")
	require.NoError(t, err)

	t.Run("Should get singular message correctly", func(t *testing.T) {
		assert.Equal(t, "Bienvenido", trans.GetMessage("welcome", 1, nil))
	})

	t.Run("Should get plural message correctly", func(t *testing.T) {
		assert.Equal(t, "Bienvenidos", trans.GetMessage("welcome", 2, nil))
	})

	t.Run("Should handle templates correctly", func(t *testing.T) {
		result := trans.GetMessage("hello_name", 0, map[string]interface{}{"Name": "Juan"})
		assert.Equal(t, "¡Hola Juan!", result)
	})

	t.Run("Should handle missing messages", func(t *testing.T) {
		assert.Equal(t, "Translation missing: NonExistent", trans.GetMessage("NonExistent", 1, nil))
	})
}

func TestNewTranslations_Errors(t *testing.T) {
	t.Run("Should fail when there are no catalogs", func(t *testing.T) {
		trans, err := newTranslationsFS("es", fstest.MapFS{}, "locales")

		assert.EqualError(t, err, "no translation files found")
		assert.Nil(t, trans)
	})

	t.Run("Should fail with an invalid TOML file", func(t *testing.T) {
		fsys := fstest.MapFS{
			"locales/active.es.toml": {Data: []byte("[Hello]\nother = \"Hola\"")},
			"locales/active.en.toml": {Data: []byte("[InvalidSection\nthis is not valid TOML")},
		}

		trans, err := newTranslationsFS("es", fsys, "locales")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "error loading locale file")
		assert.Nil(t, trans)
	})
}
