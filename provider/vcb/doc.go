// Package vcb provides the Vietcombank rate board client and ingestion provider.
//
// # Rate board
//
// Source: "Vietcombank"
// URL: https://portal.vietcombank.com.vn/Usercontrols/TVPortal.TyGia/pXML.aspx?b=10
// Interval: 30 minutes
//
// The board is an XML document with one Exrate element per currency, quoting
// cash BUY, TRANSFER and SELL rates against VND as attributes. Values are
// strings such as "26,090.00"; currencies the bank does not trade in cash
// are quoted as "-". The legacy row-set shape (SROW elements) is accepted as well.
//
// Values are resolved with the normalize package. Every present quote becomes
// one exchange rate data point (Base = currency code, Target = VND). Absent
// quotes produce no data point.
//
// The effective date (AsOf) is the board's DateTime, read as Asia/Ho_Chi_Minh
// local time. When it is missing the fetch time is used.
package vcb
