package i18n

var messages = map[Locale]map[string]string{
	English: {
		"appName":             "Celtis POS",
		"navSell":             "Sell",
		"navParked":           "Parked",
		"navHistory":          "History",
		"catalog":             "Catalog",
		"uncategorized":       "Uncategorized",
		"addToSale":           "Add",
		"currentSale":         "Current sale",
		"emptySale":           "No items yet. Pick a product to start.",
		"qty":                 "Qty",
		"remove":              "Remove",
		"note":                "Note",
		"saveNote":            "Save note",
		"items":               "{count} items",
		"subtotal":            "Subtotal",
		"tax":                 "Tax ({rate}%)",
		"total":               "Total",
		"payCash":             "Pay cash",
		"payCard":             "Pay card",
		"park":                "Park",
		"newSale":             "New sale",
		"clearAll":            "Clear all data",
		"resetCatalog":        "Reset catalog",
		"noDrafts":            "No parked sales.",
		"noHistory":           "No paid sales yet.",
		"resume":              "Resume",
		"delete":              "Delete",
		"paidWith":            "Paid {amount} by {method}",
		"methodCash":          "cash",
		"methodCard":          "card",
		"saleParked":          "Sale parked",
		"salePaid":            "Paid {amount}",
		"draftResumed":        "Sale resumed",
		"draftDeleted":        "Parked sale deleted",
		"dataCleared":         "All data cleared",
		"catalogReset":        "Catalog restored to defaults",
		"nothingToPark":       "Add items before parking",
		"nothingToPay":        "Add items before paying",
		"confirm":             "Confirm",
		"cancel":              "Cancel",
		"unsavedLeaveConfirm": "Leave the current sale?",
		"unsavedLeaveMessage": "The active sale still has items. It stays open until you pay or park it.",
		"clearAllConfirm":     "Clear all data?",
		"clearAllMessage":     "This removes the active sale, every parked sale and the history.",
		"deleteDraftConfirm":  "Delete this parked sale?",
		"language":            "Language",
		"updatedAt":           "Updated {time}",
	},
	Arabic: {
		"appName":             "سيلتس نقاط البيع",
		"navSell":             "بيع",
		"navParked":           "المعلقة",
		"navHistory":          "السجل",
		"catalog":             "الكتالوج",
		"uncategorized":       "غير مصنف",
		"addToSale":           "إضافة",
		"currentSale":         "البيع الحالي",
		"emptySale":           "لا توجد عناصر بعد. اختر منتجًا للبدء.",
		"qty":                 "الكمية",
		"remove":              "إزالة",
		"note":                "ملاحظة",
		"saveNote":            "حفظ الملاحظة",
		"items":               "{count} عناصر",
		"subtotal":            "المجموع الفرعي",
		"tax":                 "الضريبة ({rate}%)",
		"total":               "الإجمالي",
		"payCash":             "دفع نقدًا",
		"payCard":             "دفع بالبطاقة",
		"park":                "تعليق",
		"newSale":             "بيع جديد",
		"clearAll":            "مسح كل البيانات",
		"resetCatalog":        "استعادة الكتالوج",
		"noDrafts":            "لا توجد مبيعات معلقة.",
		"noHistory":           "لا توجد مبيعات مدفوعة بعد.",
		"resume":              "استئناف",
		"delete":              "حذف",
		"paidWith":            "دُفع {amount} عبر {method}",
		"methodCash":          "نقدًا",
		"methodCard":          "بطاقة",
		"saleParked":          "تم تعليق البيع",
		"salePaid":            "تم دفع {amount}",
		"draftResumed":        "تم استئناف البيع",
		"draftDeleted":        "تم حذف البيع المعلق",
		"dataCleared":         "تم مسح كل البيانات",
		"catalogReset":        "تمت استعادة الكتالوج الافتراضي",
		"nothingToPark":       "أضف عناصر قبل التعليق",
		"nothingToPay":        "أضف عناصر قبل الدفع",
		"confirm":             "تأكيد",
		"cancel":              "إلغاء",
		"unsavedLeaveConfirm": "مغادرة البيع الحالي؟",
		"unsavedLeaveMessage": "البيع الحالي ما زال يحتوي على عناصر. سيبقى مفتوحًا حتى تدفعه أو تعلقه.",
		"clearAllConfirm":     "مسح كل البيانات؟",
		"clearAllMessage":     "سيؤدي هذا إلى حذف البيع الحالي وكل المبيعات المعلقة والسجل.",
		"deleteDraftConfirm":  "حذف هذا البيع المعلق؟",
		"language":            "اللغة",
	},
}
