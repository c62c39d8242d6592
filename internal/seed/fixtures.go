package seed

import "github.com/markb/sareeone/internal/store"

// Default accounts created on first start.
const (
	AdminEmail    = "aymenpro124@gmail.com"
	adminPassword = "777146387"
	adminName     = "مدير النظام"

	DriverPhone    = "+967771234567"
	driverPassword = "password123"
	driverName     = "سائق تجريبي"
)

// Parent rows the restaurant and menu fixtures hang off.
const (
	restaurantsCategory = "المطاعم"
	grilledSection      = "المضغوط"
	friedSection        = "البروست"
)

const defaultColor = "#FF6B35"

var defaultCategories = []store.Category{
	{Name: "المطاعم", NameEn: "Restaurants", Description: "مطاعم متنوعة", Icon: "🍽️",
		Image: "https://images.pexels.com/photos/262978/pexels-photo-262978.jpeg", Color: defaultColor},
	{Name: "الحلويات", NameEn: "Sweets", Description: "حلويات ومعجنات", Icon: "🧁",
		Image: "https://images.pexels.com/photos/291528/pexels-photo-291528.jpeg", Color: defaultColor},
	{Name: "اللحوم", NameEn: "Meat", Description: "لحوم طازجة", Icon: "🥩",
		Image: "https://images.pexels.com/photos/65175/pexels-photo-65175.jpeg", Color: defaultColor},
	{Name: "كل التصنيفات", NameEn: "All Categories", Description: "جميع التصنيفات", Icon: "📋",
		Image: "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg", Color: defaultColor},
}

var defaultSections = []store.Section{
	{Name: "المضغوط", NameEn: "Grilled", Icon: "🔥"},
	{Name: "البروست", NameEn: "Fried Chicken", Icon: "🍗"},
	{Name: "المشروبات", NameEn: "Beverages", Icon: "🥤"},
	{Name: "السلطات", NameEn: "Salads", Icon: "🥗"},
	{Name: "الحلويات", NameEn: "Desserts", Icon: "🍰"},
	{Name: "المقبلات", NameEn: "Appetizers", Icon: "🥙"},
}

type setting struct {
	key         string
	value       any
	description string
	category    string
	public      bool
}

var defaultSettings = []setting{
	{"app_name", "السريع ون", "اسم التطبيق", "general", true},
	{"currency", "YER", "العملة المستخدمة", "general", true},
	{"delivery_fee", 500, "رسوم التوصيل الافتراضية", "delivery", true},
	{"minimum_order", 1000, "الحد الأدنى للطلب", "orders", true},
	{"service_fee_percentage", 5, "نسبة رسوم الخدمة", "fees", false},
}

var defaultRestaurants = []store.Restaurant{
	{
		Name:         "مطعم الأصالة",
		NameEn:       "Al Asala Restaurant",
		Description:  "أشهى الأطباق اليمنية التقليدية",
		Image:        "https://images.pexels.com/photos/262978/pexels-photo-262978.jpeg",
		Logo:         "https://images.pexels.com/photos/262978/pexels-photo-262978.jpeg",
		Phone:        "+967771234567",
		Address:      "شارع الزبيري، صنعاء",
		Rating:       4.5,
		DeliveryFee:  500,
		MinimumOrder: 1000,
		DeliveryTime: "30-45 دقيقة",
	},
	{
		Name:         "مطعم البركة",
		NameEn:       "Al Baraka Restaurant",
		Description:  "أطباق شعبية لذيذة",
		Image:        "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg",
		Logo:         "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg",
		Phone:        "+967771234568",
		Address:      "شارع الستين، صنعاء",
		Rating:       4.2,
		DeliveryFee:  400,
		MinimumOrder: 800,
		DeliveryTime: "25-40 دقيقة",
	},
}

// menuItem places a dish by restaurant index and section name.
type menuItem struct {
	restaurant int
	section    string
	item       store.MenuItem
}

var defaultMenu = []menuItem{
	{0, grilledSection, store.MenuItem{
		Name: "دجاج مضغوط", NameEn: "Grilled Chicken", Description: "دجاج مضغوط مع الأرز والسلطة",
		Image: "https://images.pexels.com/photos/106343/pexels-photo-106343.jpeg",
		Price: 2500, IsPopular: true, PreparationTime: 25,
	}},
	{0, friedSection, store.MenuItem{
		Name: "بروست دجاج", NameEn: "Fried Chicken", Description: "قطع دجاج مقلية مقرمشة",
		Image: "https://images.pexels.com/photos/60616/fried-chicken-chicken-fried-crunchy-60616.jpeg",
		Price: 2000, PreparationTime: 20,
	}},
	{1, grilledSection, store.MenuItem{
		Name: "لحم مضغوط", NameEn: "Grilled Meat", Description: "لحم مضغوط مع الخضار",
		Image: "https://images.pexels.com/photos/65175/pexels-photo-65175.jpeg",
		Price: 3000, PreparationTime: 30,
	}},
}

var defaultOffer = store.Offer{
	Title:         "خصم 20% على جميع الوجبات",
	TitleEn:       "20% Off All Meals",
	Description:   "خصم خاص لفترة محدودة",
	Image:         "https://images.pexels.com/photos/1640777/pexels-photo-1640777.jpeg",
	Type:          "discount",
	DiscountType:  "percentage",
	DiscountValue: 20,
	MinimumOrder:  1500,
	Priority:      1,
}
