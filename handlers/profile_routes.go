package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"marketplace-system/middleware"
	"marketplace-system/models"
	"marketplace-system/services"
	"marketplace-system/store"
	"marketplace-system/utils"
)

const referralCacheTTL = 60 * time.Second

// SetupProfileRoutes wires the profile and referral views. rdb may be nil;
// the referral list is then served uncached.
func SetupProfileRoutes(app *fiber.App, s store.Store, referrals *services.ReferralService, rdb *redis.Client, jwtSecret string) {
	group := app.Group("/profile", middleware.SessionMiddleware(jwtSecret, s))

	group.Get("/", func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)

		doc, err := s.Get(c.Context(), models.UserPath(sess.UserID))
		if err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User data not available"})
		}
		var rec models.UserRecord
		if err := store.Decode(doc, &rec); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
		}

		return c.JSON(fiber.Map{
			"user_id":        sess.UserID,
			"name":           rec.Name,
			"email":          rec.Email,
			"phone":          rec.Phone,
			"address":        rec.Address,
			"points":         rec.Points,
			"rank":           rec.Rank,
			"referral_code":  rec.ReferralCode,
			"referred_by":    rec.ReferredBy,
			"join_date":      rec.JoinDate,
			"last_promotion": rec.LastPromotion,
			"is_admin":       rec.IsAdmin,
		})
	})

	group.Get("/referrals", func(c *fiber.Ctx) error {
		sess := middleware.SessionFromCtx(c)
		cacheKey := "referrals:" + sess.UserID

		if rdb != nil {
			var cached map[string]models.ReferralEdge
			if hit, err := utils.GetCache(c.Context(), rdb, cacheKey, &cached); err == nil && hit {
				return c.JSON(fiber.Map{"referrals": cached})
			}
		}

		edges, err := referrals.ListEdges(c.Context(), sess.UserID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load referrals"})
		}

		if rdb != nil {
			if err := utils.SetCache(c.Context(), rdb, cacheKey, edges, referralCacheTTL); err != nil {
				logrus.Warnf("referral cache write for %s failed: %v", sess.UserID, err)
			}
		}
		return c.JSON(fiber.Map{"referrals": edges})
	})
}
