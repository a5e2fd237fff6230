package email

const subjectLeadOverdueFmt = "Follow-up vencido: %s"
