package query

// Read models are owned by the readmodel package; the aliases keep handler
// signatures short.
import "github.com/example/tastesphere/internal/readmodel"

type DishReadModel = readmodel.DishReadModel
type CartItemReadModel = readmodel.CartItemReadModel
type CartReadModel = readmodel.CartReadModel
type OrderItemReadModel = readmodel.OrderItemReadModel
type OrderReadModel = readmodel.OrderReadModel
type ReviewReadModel = readmodel.ReviewReadModel
type UserReadModel = readmodel.UserReadModel
type ViewHistoryReadModel = readmodel.ViewHistoryReadModel
