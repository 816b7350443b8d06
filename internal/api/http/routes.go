package httpapi

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/krishimitra-sync/internal/domain"
	"github.com/i474232898/krishimitra-sync/internal/screens"
)

const maxUploadBytes = 10 << 20

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc *screens.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "krishimitra-sync",
		})
	})

	v1 := app.Group("/api/v1")

	v1.Get("/session", func(c *fiber.Ctx) error {
		return c.JSON(svc.Session())
	})

	v1.Post("/onboarding", func(c *fiber.Ctx) error {
		var in screens.OnboardingInput
		if err := bindBody(c, &in); err != nil {
			return err
		}
		sess, err := svc.Onboard(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(sess)
	})

	v1.Get("/onboarding/gps", func(c *fiber.Ctx) error {
		return c.JSON(svc.LocateDevice(c.UserContext()))
	})

	v1.Put("/profile", func(c *fiber.Ctx) error {
		var in screens.ProfileInput
		if err := bindBody(c, &in); err != nil {
			return err
		}
		sess, err := svc.SaveProfile(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(sess)
	})

	v1.Get("/home", func(c *fiber.Ctx) error {
		view, err := svc.Home(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	v1.Get("/crops", func(c *fiber.Ctx) error {
		view, err := svc.Crops(c.UserContext(), c.QueryBool("refresh"))
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	v1.Get("/soil", func(c *fiber.Ctx) error {
		view, err := svc.Soil(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	registerMarketRoutes(v1, svc)
	registerAssistantRoutes(v1, svc)
	registerPreferenceRoutes(v1, svc)
}

func registerMarketRoutes(r fiber.Router, svc *screens.Service) {
	market := r.Group("/market")

	market.Get("/meta", func(c *fiber.Ctx) error {
		meta, err := svc.MarketMeta(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(meta)
	})

	market.Get("/prices", func(c *fiber.Ctx) error {
		var q screens.PricesQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		view, err := svc.Prices(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	market.Get("/my-prices", func(c *fiber.Ctx) error {
		view, err := svc.MyPrices(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	market.Get("/forecast", func(c *fiber.Ctx) error {
		var q screens.ForecastQuery
		if err := bindQuery(c, &q); err != nil {
			return err
		}
		view, err := svc.Forecast(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(view)
	})
}

func registerAssistantRoutes(r fiber.Router, svc *screens.Service) {
	r.Post("/ask", func(c *fiber.Ctx) error {
		var in screens.AskInput
		if err := bindBody(c, &in); err != nil {
			return err
		}
		ans, err := svc.Ask(c.UserContext(), in)
		if err != nil {
			return err
		}
		return c.JSON(ans)
	})

	r.Get("/ask/quick", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"commands":  screens.QuickCommands,
			"languages": screens.Languages,
		})
	})

	r.Post("/disease", func(c *fiber.Ctx) error {
		img, err := readImage(c)
		if err != nil {
			return err
		}
		res, err := svc.DetectDisease(c.UserContext(), img)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})
}

func registerPreferenceRoutes(r fiber.Router, svc *screens.Service) {
	p := r.Group("/preferences")

	p.Post("/open", func(c *fiber.Ctx) error {
		view, err := svc.OpenPreferences(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	p.Get("/", func(c *fiber.Ctx) error {
		view, err := svc.PreferencesView(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	p.Put("/district", func(c *fiber.Ctx) error {
		var body struct {
			District string `json:"district"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		view, err := svc.SetPreferenceDistrict(c.UserContext(), body.District)
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	p.Put("/mandi", func(c *fiber.Ctx) error {
		var body struct {
			Mandi string `json:"mandi"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		view, err := svc.SelectPreferenceMandi(c.UserContext(), body.Mandi)
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	p.Put("/commodities", func(c *fiber.Ctx) error {
		var body struct {
			Commodities []string `json:"commodities"`
		}
		if err := bindBody(c, &body); err != nil {
			return err
		}
		view, err := svc.SetPreferenceCommodities(c.UserContext(), body.Commodities)
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	p.Post("/save", func(c *fiber.Ctx) error {
		view, err := svc.SavePreferences(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	p.Post("/reset", func(c *fiber.Ctx) error {
		view, err := svc.ResetPreferences(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(view)
	})
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

func bindQuery(c *fiber.Ctx, out any) error {
	if err := c.QueryParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	return nil
}

// readImage reads the "file" part of a multipart upload and the optional
// "query" field.
func readImage(c *fiber.Ctx) (domain.DiseaseImage, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.DiseaseImage{}, domain.Invalid("file", "Choose a photo first.")
	}
	if fh.Size > maxUploadBytes {
		return domain.DiseaseImage{}, domain.Invalid("file", "Photo is too large.")
	}
	f, err := fh.Open()
	if err != nil {
		return domain.DiseaseImage{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.DiseaseImage{}, err
	}
	return domain.DiseaseImage{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
		Notes:       c.FormValue("query"),
	}, nil
}
