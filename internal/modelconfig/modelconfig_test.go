package modelconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/penrisk/internal/modelconfig"
	. "github.com/smartystreets/goconvey/convey"
)

const small = `{
  "feature_names": ["a1", "a2"],
  "mean": [0, 1],
  "scale": [1, 2],
  "feature_importances": [3, 0],
  "mapping": [{"source": "a", "target": "a1", "combine": "max"}, {"source": "b", "target": "a1", "combine": "max"}, {"source": "c", "target": "a2"}]
}`

func TestDefault(t *testing.T) {
	Convey("Given the embedded tables", t, func() {
		cfg, err := modelconfig.Default()

		Convey("Then they load and line up", func() {
			So(err, ShouldBeNil)
			So(len(cfg.FeatureNames), ShouldEqual, 45)
			So(len(cfg.Mean), ShouldEqual, 45)
			So(len(cfg.Scale), ShouldEqual, 45)
			So(len(cfg.Importances), ShouldEqual, 45)
			So(len(cfg.Mapping), ShouldEqual, 45)
			So(cfg.Index()["velocity_mean2"], ShouldEqual, 10)
			for _, r := range cfg.Mapping {
				So(r.Combine, ShouldEqual, modelconfig.CombineOverwrite)
			}
		})

		Convey("Then loading with an empty path returns the same tables", func() {
			again, err := modelconfig.Load("")
			So(err, ShouldBeNil)
			So(again, ShouldResemble, cfg)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given raw table JSON", t, func() {
		Convey("When it is well-formed", func() {
			cfg, err := modelconfig.Parse([]byte(small))
			So(err, ShouldBeNil)
			So(cfg.Mapping[0].Combine, ShouldEqual, modelconfig.CombineMax)
			So(cfg.Mapping[2].Combine, ShouldEqual, modelconfig.CombineOverwrite)
		})

		Convey("When it is not JSON", func() {
			_, err := modelconfig.Parse([]byte("{"))
			So(errors.Is(err, modelconfig.ErrMalformed), ShouldBeTrue)
		})

		Convey("When a required table is missing", func() {
			_, err := modelconfig.Parse([]byte(`{"feature_names":["a"],"mean":[0],"scale":[1]}`))
			So(errors.Is(err, modelconfig.ErrMalformed), ShouldBeTrue)
		})

		Convey("When an importance is negative", func() {
			_, err := modelconfig.Parse([]byte(`{"feature_names":["a"],"mean":[0],"scale":[1],"feature_importances":[-1]}`))
			So(errors.Is(err, modelconfig.ErrMalformed), ShouldBeTrue)
		})

		Convey("When the combine rule is unknown", func() {
			_, err := modelconfig.Parse([]byte(`{"feature_names":["a"],"mean":[0],"scale":[1],"feature_importances":[1],
				"mapping":[{"source":"x","target":"a","combine":"sum"}]}`))
			So(errors.Is(err, modelconfig.ErrMalformed), ShouldBeTrue)
		})

		Convey("When table lengths differ", func() {
			_, err := modelconfig.Parse([]byte(`{"feature_names":["a","b"],"mean":[0],"scale":[1,1],"feature_importances":[1,1]}`))
			So(errors.Is(err, modelconfig.ErrLengthMismatch), ShouldBeTrue)
		})

		Convey("When a mapping targets an unknown slot", func() {
			_, err := modelconfig.Parse([]byte(`{"feature_names":["a"],"mean":[0],"scale":[1],"feature_importances":[1],
				"mapping":[{"source":"x","target":"zz"}]}`))
			So(errors.Is(err, modelconfig.ErrUnknownTarget), ShouldBeTrue)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a tables file on disk", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "model.json")
		So(os.WriteFile(path, []byte(small), 0o600), ShouldBeNil)

		Convey("Then it loads", func() {
			cfg, err := modelconfig.Load(path)
			So(err, ShouldBeNil)
			So(cfg.FeatureNames, ShouldResemble, []string{"a1", "a2"})
		})

		Convey("Then a missing file is a read error", func() {
			_, err := modelconfig.Load(filepath.Join(dir, "missing.json"))
			So(errors.Is(err, modelconfig.ErrRead), ShouldBeTrue)
		})
	})
}

func TestMixedCombine(t *testing.T) {
	Convey("Given two rules that combine one slot differently", t, func() {
		_, err := modelconfig.Parse([]byte(`{"feature_names":["a"],"mean":[0],"scale":[1],"feature_importances":[1],
			"mapping":[{"source":"x","target":"a"},{"source":"y","target":"a","combine":"mean"}]}`))

		Convey("Then parsing fails", func() {
			So(errors.Is(err, modelconfig.ErrMixedCombine), ShouldBeTrue)
		})
	})
}
