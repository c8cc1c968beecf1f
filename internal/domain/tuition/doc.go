// Package tuition contains the monthly tuition ledger domain: the Obligation
// aggregate (the expected charge for one student in one cycle/month/year), the
// append-only PaymentDetail ledger backing it, and the Receipt issued once an
// obligation is fully paid.
package tuition
